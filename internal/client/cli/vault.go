package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/crux/internal/client/flow"
	"github.com/dmitrijs2005/crux/internal/client/models"
	"github.com/dmitrijs2005/crux/internal/client/services"
)

// Nominees lists nominees, or adds or removes one:
//
//	nominees
//	nominees add <email> <relationship>
//	nominees remove <email>
func (a *App) Nominees(ctx context.Context, args []string) error {
	a.Navigate(flow.RouteNominees)

	if len(args) == 0 || args[0] == "list" {
		return a.listNominees(ctx)
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			printlnFn("Usage: nominees add <email> <relationship>")
			return nil
		}
		rel, err := models.ParseRelationship(args[2])
		if err != nil {
			printlnFn(fmt.Sprintf("Relationship must be one of: %s", relationshipNames()))
			return err
		}
		n, err := a.nominees.Add(ctx, args[1], rel)
		if err != nil {
			printlnFn(err.Error())
			return err
		}
		printlnFn(fmt.Sprintf("Added %s (%s)", n.Email, n.Relationship))

	case "remove", "delete":
		if len(args) != 2 {
			printlnFn("Usage: nominees remove <email>")
			return nil
		}
		if err := a.nominees.Remove(ctx, args[1]); err != nil {
			printlnFn(err.Error())
			return err
		}
		printlnFn("Removed " + args[1])

	default:
		printlnFn("Unknown nominees command:", args[0])
	}
	return nil
}

func (a *App) listNominees(ctx context.Context) error {
	list, err := a.nominees.List(ctx)
	if err != nil {
		a.logger.Error(ctx, "list nominees", "error", err)
		return err
	}
	if len(list) == 0 {
		printlnFn("No nominees yet")
		return nil
	}
	for _, n := range list {
		printlnFn(fmt.Sprintf("%-32s %-8s %s", n.Email, n.Relationship, n.Relationship.Color()))
	}
	return nil
}

func relationshipNames() string {
	names := make([]string, len(models.Relationships))
	for i, r := range models.Relationships {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// Settings shows the settings or flips one toggle:
//
//	settings
//	settings toggle <name>
//
// Turning two_factor on or off is also sent to the provider when it
// supports that.
func (a *App) Settings(ctx context.Context, args []string) error {
	a.Navigate(flow.RouteSettings)

	if len(args) == 0 {
		st, err := a.settings.Load(ctx)
		if err != nil {
			a.logger.Error(ctx, "load settings", "error", err)
			return err
		}
		printSettings(st)
		return nil
	}

	if args[0] != "toggle" || len(args) != 2 {
		printlnFn("Usage: settings [toggle <" + strings.Join(services.ToggleNames, "|") + ">]")
		return nil
	}

	name := strings.ToLower(args[1])
	st, err := a.settings.Toggle(ctx, name)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if name == services.ToggleTwoFactor && a.mfa != nil {
		if !a.isLoggedIn() {
			printlnFn("Saved on this device, but the provider was not updated")
			return errMFANotSynced
		}
		if err := a.mfa.SetMFA(ctx, a.session.State().Identity, st.Security.TwoFactor); err != nil {
			a.logger.Warn(ctx, "failed to update MFA at the provider", "error", err)
			printlnFn("Saved on this device, but the provider was not updated")
			return errors.Join(errMFANotSynced, err)
		}
	}
	printSettings(st)
	return nil
}

var errMFANotSynced = errors.New("mfa setting not synced")

func printSettings(st services.Settings) {
	values := map[string]bool{
		services.ToggleMaster:      st.Notifications.Master,
		services.ToggleMessages:    st.Notifications.Messages,
		services.ToggleSharedFiles: st.Notifications.SharedFiles,
		services.ToggleSecurity:    st.Notifications.Security,
		services.ToggleTwoFactor:   st.Security.TwoFactor,
		services.ToggleFaceID:      st.Security.FaceID,
	}
	for _, name := range services.ToggleNames {
		state := "off"
		if values[name] {
			state = "on"
		}
		printlnFn(fmt.Sprintf("%-14s %s", name, state))
	}
}
