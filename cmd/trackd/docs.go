package main

// General API documentation for swaggo. Build with -tags=swagger to serve it.
//
// @title           trackd API
// @version         1.0
// @description     HTTP API for multi-object tracking runs over detector output.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
