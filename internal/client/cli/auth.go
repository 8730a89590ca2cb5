package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/printfleet/internal/common"
)

func (a *App) Login(ctx context.Context, userName string) error {
	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.call(ctx)
	defer cancel()

	sess, err := a.api.Login(ctx, userName, password)
	if err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		return err
	}

	a.session = sess
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", sess.Username, sess.Role)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.session = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
