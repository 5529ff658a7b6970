package state

// Task represents a single work item from tasks.json.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	Passes      bool     `json:"passes"`
	Status      string   `json:"status,omitempty"`
	Deps        []string `json:"deps,omitempty"`
}

// TaskFile is the on-disk shape of tasks.json.
type TaskFile struct {
	Tasks []Task `json:"tasks"`
}

// Task status values. Optional; the agent may omit status entirely.
const (
	StatusTodo    = "todo"
	StatusDoing   = "doing"
	StatusBlocked = "blocked"
	StatusDone    = "done"
)

// NextTask returns the first task with passes == false, in list order.
// This is a deterministic fallback for display and scripted tests; task
// selection during a real run is delegated to the agent.
func NextTask(tasks []Task) (Task, bool) {
	for _, t := range tasks {
		if !t.Passes {
			return t, true
		}
	}
	return Task{}, false
}

// CountComplete returns how many tasks have passes == true.
func CountComplete(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if t.Passes {
			n++
		}
	}
	return n
}
