package bgw

// RawStore holds the most recent output text for each gateway command,
// together with a version counter per slot. Every Set replaces the stored
// text wholesale and bumps the version; derived-field caches compare
// versions to decide whether a recompute is due. An empty blob means the
// command has never been observed.
type RawStore struct {
	slots map[Command]*rawSlot
}

type rawSlot struct {
	text    string
	version uint64
}

// NewRawStore returns a store with a slot for every known command.
func NewRawStore() *RawStore {
	s := &RawStore{slots: make(map[Command]*rawSlot, len(Commands))}
	for _, c := range Commands {
		s.slots[c] = &rawSlot{}
	}
	return s
}

// Set replaces the blob for cmd unconditionally. No line-level merging.
func (s *RawStore) Set(cmd Command, text string) {
	slot, ok := s.slots[cmd]
	if !ok {
		return
	}
	slot.text = text
	slot.version++
}

// Get returns the stored blob, or "" if the command was never observed.
func (s *RawStore) Get(cmd Command) string {
	if slot, ok := s.slots[cmd]; ok {
		return slot.text
	}
	return ""
}

// Observed reports whether a non-empty blob is stored for cmd.
func (s *RawStore) Observed(cmd Command) bool {
	return s.Get(cmd) != ""
}

// Version returns the slot's version counter. It starts at zero and is
// incremented on every Set, including sets of empty text.
func (s *RawStore) Version(cmd Command) uint64 {
	if slot, ok := s.slots[cmd]; ok {
		return slot.version
	}
	return 0
}

func (s *RawStore) versions(cmds []Command) []uint64 {
	vs := make([]uint64, len(cmds))
	for i, c := range cmds {
		vs[i] = s.Version(c)
	}
	return vs
}
