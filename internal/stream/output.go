package stream

// Output is a renderer output unit: a formatted fragment plus enough
// attribution for the consumer to place it (which agent produced it, what
// kind of event it came from).
type Output struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
	Kind    string `json:"kind"`
}
