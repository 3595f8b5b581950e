package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/office"
)

func (cli *commandLine) addOffice(name, level, parentID string) error {
	ctx := context.Background()

	switch level {
	case office.LevelKodam, office.LevelKorem, office.LevelKodim, office.LevelKoramil:
	default:
		return fmt.Errorf("unknown office level %q", level)
	}
	if parentID != "" {
		if _, err := cli.officeRepo.GetOffice(ctx, parentID); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	_, err := cli.officeRepo.CreateOffice(ctx, office.Office{
		ID:        uuid.New().String(),
		Name:      core.CleanString(name),
		Level:     level,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err
}
