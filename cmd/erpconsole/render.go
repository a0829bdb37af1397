package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/acme-erp/admin-console/internal/core/domain"
	"github.com/acme-erp/admin-console/internal/core/service"
)

const dateLayout = "2006-01-02"

func renderProfile(w io.Writer, u domain.User) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\t%s (%s)\n", u.FullName(), u.Initials())
	fmt.Fprintf(tw, "Username\t%s\n", u.Username)
	fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role\t%s\n", u.Role)
	_ = tw.Flush()
}

func renderOverview(w io.Writer, ov *service.Overview) {
	fmt.Fprintf(w, "Welcome back, %s!\n", ov.User.FullName())
	fmt.Fprintf(w, "Role: %s - %s\n\n", ov.Role, ov.Description)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total users\t%d\n", ov.Stats.TotalUsers)
	fmt.Fprintf(tw, "Active users\t%d\n", ov.Stats.ActiveUsers)
	fmt.Fprintf(tw, "System status\t%s\n", ov.Stats.SystemStatus)
	_ = tw.Flush()
	if ov.StatsFallback {
		fmt.Fprintln(w, "(statistics unavailable, showing estimates)")
	}

	fmt.Fprintln(w, "\nYour permissions:")
	for _, p := range ov.Permissions {
		fmt.Fprintf(w, "  - %s\n", p)
	}

	switch {
	case ov.UsersErr != nil:
		fmt.Fprintf(w, "\nUser directory unavailable: %v\n", ov.UsersErr)
	case ov.Role.CanViewDirectory():
		fmt.Fprintf(w, "\n%d users in the directory\n", len(ov.Users))
	}
}

func renderUsers(w io.Writer, users []domain.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUSERNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.FullName(), u.Username, u.Email, u.Role, u.CreatedAt.Format(dateLayout))
	}
	_ = tw.Flush()
}
