package console

import (
	"fmt"
	"io"
	"time"

	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/core/domain"
)

const separator = "----------------------------------------"

func header(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n  %s\n%s\n", separator, title, separator)
}

func success(w io.Writer, msg string) {
	fmt.Fprintf(w, "[OK] %s\n", msg)
}

func warn(w io.Writer, msg string) {
	fmt.Fprintf(w, "[!] %s\n", msg)
}

func failure(w io.Writer, msg string) {
	fmt.Fprintf(w, "[ERROR] %s\n", msg)
}

func printUser(w io.Writer, user domain.User) {
	fmt.Fprintf(w, "ID:            %d\n", user.ID)
	fmt.Fprintf(w, "Username:      %s\n", user.Username)
	fmt.Fprintf(w, "Email:         %s\n", user.Email)
	fmt.Fprintf(w, "Active:        %t\n", user.Active)
	fmt.Fprintf(w, "Registered:    %s\n", user.RegisteredAt.Format(time.RFC3339))
	if user.Deleted {
		fmt.Fprintf(w, "Deleted:       true\n")
	}
	if user.Credential != nil {
		fmt.Fprintf(w, "Credential ID: %d (reset required: %t)\n", user.Credential.ID, user.Credential.ResetRequired)
	}
}

func printCredential(w io.Writer, cred domain.Credential) {
	fmt.Fprintf(w, "ID:             %d\n", cred.ID)
	fmt.Fprintf(w, "Last changed:   %s\n", cred.LastChanged.Format(time.RFC3339))
	fmt.Fprintf(w, "Reset required: %t\n", cred.ResetRequired)
	if cred.Deleted {
		fmt.Fprintf(w, "Deleted:        true\n")
	}
}
