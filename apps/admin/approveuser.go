package main

import (
	"context"
	"time"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/user"
)

func (cli *commandLine) approveUser(uname string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
	if err != nil {
		return err
	}
	if usr.IsActive {
		return nil
	}
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
