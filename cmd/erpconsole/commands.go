package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func runLogin(a *app, args []string) error {
	fs := newFlagSet("login", a.out)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("login: -email is required")
	}
	if *password == "" {
		p, err := promptSecret(a, "Password: ")
		if err != nil {
			return err
		}
		*password = p
	}

	if err := a.session.Login(a.ctx, *email, *password); err != nil {
		return err
	}
	u := a.session.CurrentUser()
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", u.FullName(), a.session.Role())
	return nil
}

func runLogout(a *app, _ []string) error {
	if err := a.session.Logout(a.ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func runWhoami(a *app, _ []string) error {
	if err := requireSession(a); err != nil {
		return err
	}
	renderProfile(a.out, *a.session.CurrentUser())
	return nil
}

func runDashboard(a *app, _ []string) error {
	if err := requireSession(a); err != nil {
		return err
	}
	ov, err := a.directory.Overview(a.ctx)
	if err != nil {
		return err
	}
	renderOverview(a.out, ov)
	return nil
}

func runUsers(a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("users: expected one of list, create, update, delete")
	}
	if err := requireSession(a); err != nil {
		return err
	}

	switch args[0] {
	case "list":
		return runUsersList(a, args[1:])
	case "create":
		return runUsersCreate(a, args[1:])
	case "update":
		return runUsersUpdate(a, args[1:])
	case "delete":
		return runUsersDelete(a, args[1:])
	default:
		return fmt.Errorf("users: unknown subcommand %q", args[0])
	}
}

func runUsersList(a *app, args []string) error {
	fs := newFlagSet("users list", a.out)
	search := fs.String("search", "", "filter by name, email, username or role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	listing, err := a.directory.Fetch(a.ctx)
	if err != nil {
		return err
	}
	if listing.Forbidden {
		fmt.Fprintln(a.out, "You don't have permission to view users.")
		return nil
	}

	users := listing.Users
	if *search != "" {
		users = a.directory.Search(*search)
	}
	renderUsers(a.out, users)
	return nil
}

// userFlags binds the editable user attributes to fs.
type userFlags struct {
	username, email, firstName, lastName, role, password, confirm *string
}

func bindUserFlags(fs *flag.FlagSet) userFlags {
	return userFlags{
		username:  fs.String("username", "", "username"),
		email:     fs.String("email", "", "email address"),
		firstName: fs.String("first-name", "", "first name"),
		lastName:  fs.String("last-name", "", "last name"),
		role:      fs.String("role", "", "admin, manager or employee"),
		password:  fs.String("password", "", "password"),
		confirm:   fs.String("password-confirm", "", "password confirmation (defaults to -password)"),
	}
}

// apply copies every flag that was set on the command line onto fields.
func (f userFlags) apply(fs *flag.FlagSet, fields *domain.UserFields) error {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "username":
			fields.Username = *f.username
		case "email":
			fields.Email = *f.email
		case "first-name":
			fields.FirstName = *f.firstName
		case "last-name":
			fields.LastName = *f.lastName
		case "role":
			role, perr := domain.ParseRole(*f.role)
			if perr != nil {
				err = perr
				return
			}
			fields.Role = role
		case "password":
			fields.Password = *f.password
		case "password-confirm":
			fields.PasswordConfirm = *f.confirm
		}
	})
	if fields.Password != "" && fields.PasswordConfirm == "" {
		fields.PasswordConfirm = fields.Password
	}
	return err
}

func runUsersCreate(a *app, args []string) error {
	fs := newFlagSet("users create", a.out)
	flags := bindUserFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fields := domain.UserFields{Role: domain.RoleEmployee}
	if err := flags.apply(fs, &fields); err != nil {
		return err
	}

	u, err := a.directory.Create(a.ctx, fields)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created user %s (id %s)\n", u.Username, u.ID)
	return nil
}

func runUsersUpdate(a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("users update: expected a user id")
	}
	id := domain.UserID(args[0])

	fs := newFlagSet("users update", a.out)
	flags := bindUserFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	current, err := findUser(a, id)
	if err != nil {
		return err
	}
	fields := domain.FieldsFromUser(current)
	if err := flags.apply(fs, &fields); err != nil {
		return err
	}

	u, err := a.directory.Update(a.ctx, id, fields)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated user %s\n", u.Username)
	return nil
}

func runUsersDelete(a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("users delete: expected a user id")
	}
	id := domain.UserID(args[0])

	fs := newFlagSet("users delete", a.out)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if !*yes {
		answer, err := prompt(a, "Are you sure you want to delete this user? [y/N] ")
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Fprintln(a.out, "Aborted")
			return nil
		}
	}

	if err := a.directory.Remove(a.ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted user %s\n", id)
	return nil
}

func findUser(a *app, id domain.UserID) (domain.User, error) {
	listing, err := a.directory.Fetch(a.ctx)
	if err != nil {
		return domain.User{}, err
	}
	if listing.Forbidden {
		return domain.User{}, domain.ErrForbidden
	}
	for _, u := range listing.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrUserNotFound)
}

func prompt(a *app, label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when input is a terminal and falls back
// to a plain line read for pipes and redirected input.
func promptSecret(a *app, label string) (string, error) {
	f, ok := a.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return prompt(a, label)
	}
	fmt.Fprint(a.out, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
