package main

import (
	"context"
	"fmt"
)

// normalizeWeights rescales leaf weights to sum to 100.00: one project's task
// tree when projectID is given, the template catalog otherwise.
func (cli *commandLine) normalizeWeights(projectID string) error {
	ctx := context.Background()

	if projectID != "" {
		res, err := cli.taskSvc.NormalizeWeights(ctx, projectID)
		if err != nil {
			return err
		}
		fmt.Printf("project %s: %d task weight(s) updated, sum %s\n", projectID, res.UpdatedCount, res.FinalSum)
		return nil
	}

	res, err := cli.tplSvc.NormalizeWeights(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("template catalog: %d weight(s) updated, sum %s\n", res.UpdatedCount, res.FinalSum)
	return nil
}
