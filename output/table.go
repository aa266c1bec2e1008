// Package output renders device responses as terminal tables/messages,
// transplanted from the teacher's output package and rewritten against the
// SSP domain: setup-request fields, poll events, and channel values replace
// USIM/ISIM service tables, but the go-pretty styling and PrintError/Success/
// Warning one-liners keep the teacher's shape unchanged.
package output

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/decapod-atm/ssp-host/ssp/message"
	"github.com/decapod-atm/ssp-host/ssp/poll"
)

var (
	colorHeader  = text.Colors{text.FgCyan, text.Bold}
	colorLabel   = text.Colors{text.FgYellow}
	colorValue   = text.Colors{text.FgWhite}
	colorSuccess = text.Colors{text.FgGreen}
	colorError   = text.Colors{text.FgRed}
	colorWarn    = text.Colors{text.FgYellow}
)

func getTableStyle() table.Style {
	style := table.StyleRounded
	style.Color.Header = colorHeader
	style.Color.Row = colorValue
	style.Color.RowAlternate = colorValue
	return style
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(getTableStyle())
	return t
}

// PrintSetupRequest renders a SetupRequestResponse: unit identity plus the
// per-channel value table.
func PrintSetupRequest(resp message.SetupRequestResponse) {
	t := newTable()
	t.SetTitle("Setup Request")
	t.AppendRow(table.Row{colorLabel.Sprint("Unit Type"), fmt.Sprintf("0x%02X", resp.UnitType)})
	t.AppendRow(table.Row{colorLabel.Sprint("Firmware Version"), fmt.Sprintf("% X", resp.FirmwareVersion)})
	t.AppendRow(table.Row{colorLabel.Sprint("Country Code"), string(resp.CountryCode[:])})
	t.AppendRow(table.Row{colorLabel.Sprint("Value Multiplier"), resp.ValueMultiplier})
	t.AppendRow(table.Row{colorLabel.Sprint("Protocol Version"), resp.ProtocolVersion})
	t.AppendRow(table.Row{colorLabel.Sprint("Channel Count"), resp.NumChannels})
	t.Render()

	PrintChannelTable(resp.ChannelValues, resp.ChannelValuesLong)
}

// PrintChannelTable renders raw per-channel values alongside their
// long-form (protocol ≥ 6) counterparts, when present.
func PrintChannelTable(values []byte, long []uint32) {
	t := newTable()
	t.SetTitle("Channels")
	if len(long) == len(values) {
		t.AppendHeader(table.Row{"Channel", "Value", "Long Value"})
		for i, v := range values {
			t.AppendRow(table.Row{i + 1, v, long[i]})
		}
	} else {
		t.AppendHeader(table.Row{"Channel", "Value"})
		for i, v := range values {
			t.AppendRow(table.Row{i + 1, v})
		}
	}
	t.Render()
}

// PrintChannelValueData renders a ChannelValueDataResponse's live values.
func PrintChannelValueData(resp message.ChannelValueDataResponse) {
	t := newTable()
	t.SetTitle("Channel Value Data")
	t.AppendHeader(table.Row{"Channel", "Value"})
	for i, v := range resp.ChannelValues {
		t.AppendRow(table.Row{i + 1, v})
	}
	t.Render()
}

// PrintPollEvents renders a decoded poll-event stream.
func PrintPollEvents(events []poll.Event) {
	if len(events) == 0 {
		PrintSuccess("no events pending")
		return
	}

	t := newTable()
	t.SetTitle("Poll Events")
	t.AppendHeader(table.Row{"Event", "Data"})
	for _, e := range events {
		t.AppendRow(table.Row{e.Tag.String(), fmt.Sprintf("% X", e.Data)})
	}
	t.Render()
}

// PrintDatasetVersion renders the loaded currency-dataset version string.
func PrintDatasetVersion(version string) {
	t := newTable()
	t.SetTitle("Dataset Version")
	t.AppendRow(table.Row{colorLabel.Sprint("Version"), version})
	t.Render()
}

// PrintSerialNumber renders a device's 4-byte serial number.
func PrintSerialNumber(sn [4]byte) {
	PrintSuccess(fmt.Sprintf("serial number: % X", sn))
}

// PrintError prints a red ✗-prefixed error message.
func PrintError(format string, a ...any) {
	fmt.Println(colorError.Sprintf("✗ Error: %s", fmt.Sprintf(format, a...)))
}

// PrintSuccess prints a green ✓-prefixed message.
func PrintSuccess(format string, a ...any) {
	fmt.Println(colorSuccess.Sprintf("✓ %s", fmt.Sprintf(format, a...)))
}

// PrintWarning prints a yellow ⚠-prefixed message.
func PrintWarning(format string, a ...any) {
	fmt.Println(colorWarn.Sprintf("⚠ %s", fmt.Sprintf(format, a...)))
}
