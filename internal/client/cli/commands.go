package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/client/client"
)

func (a *App) Printers(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	list, err := a.api.ListPrinters(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No printers")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tFIRMWARE\tBATTERY\tLAST SEEN")
	for _, p := range list {
		battery := "-"
		if p.BatteryLevel != nil {
			battery = fmt.Sprintf("%d%%", *p.BatteryLevel)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Status, p.FirmwareVersion, battery, p.LastSeen)
	}
	return w.Flush()
}

func (a *App) Firmware(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	list, err := a.api.ListFirmware(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No firmware uploaded")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVERSION\tSTATUS\tPROGRESS\tTARGETS\tUPLOADED")
	for _, f := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.Version, f.Status, progress(f), strings.Join(f.TargetPrinters, ","),
			f.UploadDate.Format(time.DateTime))
	}
	return w.Flush()
}

func progress(f client.Firmware) string {
	if f.Progress == nil {
		return "-"
	}
	return fmt.Sprintf("%d%%", *f.Progress)
}

func (a *App) Deploy(ctx context.Context, id string) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	f, err := a.api.Deploy(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "Deploy failed: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Deployment of %s started for printers %s\n", f.Version, strings.Join(f.TargetPrinters, ", "))
	return nil
}

func (a *App) Cancel(ctx context.Context, id string) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	f, err := a.api.Cancel(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "Cancel failed: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Deployment of %s cancelled\n", f.Version)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	st, err := a.api.HistoryStats(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Updates: %d total, %d successful, %d failed, %d rolled back (success rate %d%%)\n",
		st.Total, st.Successful, st.Failed, st.RolledBack, st.SuccessRate)
	return nil
}
