package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/danwahyudir/lapju/core/office"
	"github.com/danwahyudir/lapju/core/project"
	"github.com/danwahyudir/lapju/core/task"
	"github.com/danwahyudir/lapju/core/template"
	"github.com/danwahyudir/lapju/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	usrRepo    user.Repository
	officeRepo office.Repository
	tplSvc     *template.Service
	taskSvc    *task.Service
	projSvc    *project.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate CMD [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-admin] - create or update an approved user; password prompted")
	fmt.Println("  approveuser -username USERNAME|EMAIL - approve a pending account")
	fmt.Println("  addoffice -name NAME -level kodam|korem|kodim|koramil [-parent ID] - add an office")
	fmt.Println("  normalizeweights [-project ID] - normalize leaf weights of a project's tasks, or of the template catalog")
	fmt.Println("  resettasks -project ID - drop and re-clone a project's task tree")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username. The password will be prompted next.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant admin rights.")

	approveUserCmd := flag.NewFlagSet("approveuser", flag.ExitOnError)
	approveUserUname := approveUserCmd.String("username", "", "The user's username or email.")

	addOfficeCmd := flag.NewFlagSet("addoffice", flag.ExitOnError)
	addOfficeName := addOfficeCmd.String("name", "", "The office name.")
	addOfficeLevel := addOfficeCmd.String("level", "", "The office level: kodam, korem, kodim or koramil.")
	addOfficeParent := addOfficeCmd.String("parent", "", "The parent office ID.")

	normalizeCmd := flag.NewFlagSet("normalizeweights", flag.ExitOnError)
	normalizeProject := normalizeCmd.String("project", "", "The project ID. Omit to normalize the template catalog.")

	resetTasksCmd := flag.NewFlagSet("resettasks", flag.ExitOnError)
	resetTasksProject := resetTasksCmd.String("project", "", "The project ID.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, string(pwd), *addUserAdmin)
	case "approveuser":
		if err := approveUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *approveUserUname == "" {
			approveUserCmd.Usage()
			return errHelp
		}
		return cli.approveUser(*approveUserUname)
	case "addoffice":
		if err := addOfficeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addOfficeName == "" || *addOfficeLevel == "" {
			addOfficeCmd.Usage()
			return errHelp
		}
		return cli.addOffice(*addOfficeName, *addOfficeLevel, *addOfficeParent)
	case "normalizeweights":
		if err := normalizeCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.normalizeWeights(*normalizeProject)
	case "resettasks":
		if err := resetTasksCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetTasksProject == "" {
			resetTasksCmd.Usage()
			return errHelp
		}
		return cli.resetTasks(*resetTasksProject)
	default:
		cli.printUsage()
		return errHelp
	}
}
