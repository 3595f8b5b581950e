package main

import (
	"context"
)

func (cli *commandLine) resetTasks(projectID string) error {
	return cli.projSvc.ResetTasks(context.Background(), projectID)
}
