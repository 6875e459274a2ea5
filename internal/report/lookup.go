package report

import "taskboard/internal/model"

// Index holds the parent→children hash maps for one snapshot so the
// task/subtask/nano-subtask hierarchy can be walked in O(1) per edge.
// Records whose parent is missing from the snapshot are simply never
// visited; that is a silent-skip policy, not an error.
type Index struct {
	TasksByProject map[int][]model.Task
	SubtasksByTask map[int][]model.Subtask
	NanosBySubtask map[int][]model.NanoSubtask
}

// BuildIndex builds the three lookup maps in a single O(n) pass over the
// flat collections. Child order within a parent follows input order.
func BuildIndex(tasks []model.Task, subtasks []model.Subtask, nanos []model.NanoSubtask) *Index {
	idx := &Index{
		TasksByProject: make(map[int][]model.Task, len(tasks)),
		SubtasksByTask: make(map[int][]model.Subtask, len(subtasks)),
		NanosBySubtask: make(map[int][]model.NanoSubtask, len(nanos)),
	}

	for _, t := range tasks {
		idx.TasksByProject[t.ProjectID] = append(idx.TasksByProject[t.ProjectID], t)
	}
	for _, s := range subtasks {
		idx.SubtasksByTask[s.TaskID] = append(idx.SubtasksByTask[s.TaskID], s)
	}
	for _, n := range nanos {
		idx.NanosBySubtask[n.SubtaskID] = append(idx.NanosBySubtask[n.SubtaskID], n)
	}

	return idx
}
