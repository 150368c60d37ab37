package shared

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ConfirmHeader carries the id the client confirmed for deletion.
const ConfirmHeader = "X-Confirm-Delete"

// ErrConfirmationDeclined means the user did not confirm a destructive action.
var ErrConfirmationDeclined = errors.New("confirmation declined")

// Confirmer asks the user to approve prompt and reports the answer.
type Confirmer func(ctx context.Context, prompt string) bool

// AlwaysConfirm approves every prompt.
func AlwaysConfirm(context.Context, string) bool { return true }

// NeverConfirm declines every prompt.
func NeverConfirm(context.Context, string) bool { return false }

// HeaderConfirmer approves only when the request echoes id in ConfirmHeader.
func HeaderConfirmer(r *http.Request, id int64) Confirmer {
	echoed := strings.TrimSpace(r.Header.Get(ConfirmHeader))
	return func(context.Context, string) bool {
		return echoed == strconv.FormatInt(id, 10)
	}
}

// Confirm runs c with prompt and fails with ErrConfirmationDeclined when the
// answer is no. A nil Confirmer declines.
func Confirm(ctx context.Context, c Confirmer, prompt string) error {
	if c == nil || !c(ctx, prompt) {
		return ErrConfirmationDeclined
	}
	return nil
}
