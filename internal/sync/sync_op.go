package sync

type OpType string

const (
	OpAdd    OpType = "Add"
	OpUpdate OpType = "Update"
	OpDelete OpType = "Delete"
)
