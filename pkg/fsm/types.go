package fsm

// RunRequest is the FSM input: one tool invocation from the command line
type RunRequest struct {
	RunID     string
	Tool      string
	ImagePath string
	ImageURL  string
	MaskPath  string
	Prompt    string
	Download  bool
}

// RunResponse is the FSM output (accumulated across transitions)
type RunResponse struct {
	// From Accept
	Tool string

	// From Submit
	State string
	URLs  []string
	Text  string

	// From Save
	Saved  []string
	Notice string

	// From Failed
	ErrorMessage string
}

// State names
const (
	StateAccept = "accept"
	StateSubmit = "submit"
	StateSave   = "save"
	StateFailed = "failed"
)
