package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/Alia5/flightstick/apitypes"
	"github.com/Alia5/flightstick/device/evdev"
	"github.com/Alia5/flightstick/internal/server/api/handler"
)

// Devices lists the input devices discovery would consider.
type Devices struct {
	Remote bool         `help:"Ask a running instance instead of scanning locally"`
	JSON   bool         `help:"Print JSON instead of a table"`
	Client ClientConfig `embed:"" prefix:"api."`
}

// Run is called by Kong when the devices command is executed.
func (d *Devices) Run(logger *slog.Logger) error {
	var list *apitypes.DevicesListResponse
	if d.Remote {
		var err error
		if list, err = d.Client.client().DevicesList(); err != nil {
			return err
		}
	} else {
		devs, err := evdev.Scan(logger)
		if err != nil {
			return err
		}
		l := handler.ListInputDevices(devs)
		list = &l
	}
	return printDevices(os.Stdout, list, d.JSON)
}

func printDevices(w io.Writer, list *apitypes.DevicesListResponse, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	if len(list.Devices) == 0 {
		_, err := fmt.Fprintln(w, "no input devices found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tKIND\tSCORE\tVID:PID\tNAME")
	for _, dev := range list.Devices {
		kind := "keyboard"
		if dev.Pointer {
			kind = "pointer"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s:%s\t%s\n", dev.Path, kind, dev.Score, dev.Vid, dev.Pid, dev.Name)
	}
	return tw.Flush()
}
