package registry

import (
	"errors"
	"fmt"
	"strings"

	"trackd/internal/config"
	"trackd/internal/tracker"
	"trackd/internal/tracker/botsort"
	"trackd/internal/tracker/bytetrack"
)

// Kind is the closed set of tracker strategies this build supports.
// Adding a strategy means adding a constant and a case in Constructor.
type Kind int

const (
	KindByteTrack Kind = iota + 1
	KindBoTSORT
)

var kindNames = map[Kind]string{
	KindByteTrack: "bytetrack",
	KindBoTSORT:   "botsort",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds lists the supported kinds in a fixed order.
func Kinds() []Kind { return []Kind{KindByteTrack, KindBoTSORT} }

// KindNames lists the supported kind names in a fixed order.
func KindNames() []string {
	out := make([]string, 0, len(kindNames))
	for _, k := range Kinds() {
		out = append(out, k.String())
	}
	return out
}

// Constructor builds one tracker instance from a profile and frame rate.
type Constructor func(cfg config.TrackerConfig, frameRate int) tracker.Strategy

// UnsupportedTrackerKindError reports a tracker_type outside the supported set.
type UnsupportedTrackerKindError struct {
	Kind      string
	Supported []string
}

func (e *UnsupportedTrackerKindError) Error() string {
	return fmt.Sprintf("unsupported tracker kind %q: supported kinds are %s", e.Kind, strings.Join(e.Supported, ", "))
}

// IsUnsupportedTrackerKind reports whether err is or wraps an UnsupportedTrackerKindError.
func IsUnsupportedTrackerKind(err error) bool {
	var e *UnsupportedTrackerKindError
	return errors.As(err, &e)
}

// ParseKind maps a configured tracker_type to its Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, &UnsupportedTrackerKindError{Kind: name, Supported: KindNames()}
}

// Constructor returns the factory for k.
func (k Kind) Constructor() Constructor {
	switch k {
	case KindByteTrack:
		return func(cfg config.TrackerConfig, frameRate int) tracker.Strategy {
			return bytetrack.New(cfg, frameRate)
		}
	case KindBoTSORT:
		return func(cfg config.TrackerConfig, frameRate int) tracker.Strategy {
			return botsort.New(cfg, frameRate)
		}
	}
	return nil
}

// Resolve validates name and returns its constructor. No tracker is built.
func Resolve(name string) (Constructor, error) {
	k, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return k.Constructor(), nil
}
