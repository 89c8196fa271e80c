package queue

import (
	"github.com/maheshrc27/crosspost/internal/service"
)

type Queue struct {
	ds service.DispatchService
}

func NewQueue(ds service.DispatchService) *Queue {
	return &Queue{ds: ds}
}

const TaskTypeExecutePost = "post:execute"

type ExecutePostPayload struct {
	PostID int64 `json:"post_id"`
}
