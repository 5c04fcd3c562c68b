package manager

// Decide picks the assignment mode for a batch. A batch of still images is
// one continuous stream unless the caller says the slots are different
// videos or disallows sharing; multiplexed video never shares a tracker.
func Decide(batchSize int, source SourceKind, allowShared, multipleVideos bool) AssignmentMode {
	if source == SourceImages && batchSize >= 1 && allowShared && !multipleVideos {
		return ModeShared
	}
	return ModePerSlot
}

// SlotTracker returns the index of the tracker serving slot.
func SlotTracker(mode AssignmentMode, slot int) int {
	if mode == ModeShared {
		return 0
	}
	return slot
}
