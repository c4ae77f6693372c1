package notify

// Group is the messages of one type, in insertion order.
type Group struct {
	Type     string
	Messages []string
}

// Groups is an ordered type -> messages mapping. Types keep the order in which
// they were first added.
type Groups []Group

// Get returns the messages stored under msgType.
func (g Groups) Get(msgType string) ([]string, bool) {
	for _, grp := range g {
		if grp.Type == msgType {
			return grp.Messages, true
		}
	}
	return nil, false
}

// Types lists the group keys in order.
func (g Groups) Types() []string {
	out := make([]string, 0, len(g))
	for _, grp := range g {
		out = append(out, grp.Type)
	}
	return out
}

// Len is the total number of messages across all groups.
func (g Groups) Len() int {
	n := 0
	for _, grp := range g {
		n += len(grp.Messages)
	}
	return n
}

// Map flattens the groups into a plain map for callers that don't care about order.
func (g Groups) Map() map[string][]string {
	out := make(map[string][]string, len(g))
	for _, grp := range g {
		out[grp.Type] = append([]string(nil), grp.Messages...)
	}
	return out
}
