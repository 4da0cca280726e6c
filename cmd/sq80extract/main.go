// Package main is the entry point for sq80extract CLI
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/james-see/sq80extract/pkg/api"
	"github.com/james-see/sq80extract/pkg/converter"
	"github.com/james-see/sq80extract/pkg/converter/devices"
	"github.com/james-see/sq80extract/pkg/disk"
	"github.com/james-see/sq80extract/pkg/extract"
	"github.com/james-see/sq80extract/pkg/transmit"
	"github.com/james-see/sq80extract/pkg/tui"
	"github.com/spf13/cobra"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	number      int
	dumpFormat  string
	prefix      string
	listFlag    bool
	channel     int
	withDeleted bool
	force       bool
	outputFile  string
	portName    string
	sendDelay   time.Duration
	serverPort  int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sq80extract",
	Short: "Extract programs and banks from Ensoniq SQ80 disk images",
	Long: `sq80extract dumps program banks or individual programs from an SQ80 disk
dump file (as made by the sq80toolkit) as literal binary, SysEx or MIDI files.
File names are generated from the bank/program number and the name stored in
the disk directory. Without --dump the contents are only listed.

Modes:
  prog      single programs: list/dump one or all of the 128 programs
  bank      program banks: list/dump one or all of the 40 banks
  virtbank  virtual banks: the single programs packed into up to 4 banks of
            40, padding the last one with a blank init patch

Examples:
  sq80extract prog disk.img
  sq80extract prog disk.img --list
  sq80extract bank disk.img --number 3 --dump syx
  sq80extract virtbank disk.img --dump bin --prefix out/VIRTBANK
  sq80extract send BANK03_FACTORY.syx --port SQ80
  sq80extract tui
  sq80extract serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var progCmd = &cobra.Command{
	Use:   "prog <imagefile>",
	Short: "List or dump individually saved programs",
	Args:  cobra.ExactArgs(1),
	RunE:  runMode(extract.ModeProgram),
}

var bankCmd = &cobra.Command{
	Use:   "bank <imagefile>",
	Short: "List or dump program banks",
	Long: `List or dump program banks. With --list the programs inside each bank
are listed too.`,
	Args: cobra.ExactArgs(1),
	RunE: runMode(extract.ModeBank),
}

var virtbankCmd = &cobra.Command{
	Use:   "virtbank <imagefile>",
	Short: "List or dump single programs consolidated into virtual banks",
	Long: `Pack the single programs into virtual banks of 40. Empty positions in
the last bank are filled with an init patch with a blank name. Virtual bank
listings always use the concise format.`,
	Args: cobra.ExactArgs(1),
	RunE: runMode(extract.ModeVirtualBank),
}

var syx2binCmd = &cobra.Command{
	Use:   "syx2bin <input.syx|input.mid>",
	Short: "Unpack an SQ80 SysEx dump back to binary",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyxToBin,
}

var sendCmd = &cobra.Command{
	Use:   "send <input.syx|input.mid>",
	Short: "Send a SysEx dump to a MIDI output port",
	Args:  cobra.ExactArgs(1),
	RunE:  runSend,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Args:  cobra.NoArgs,
	RunE:  runPorts,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Mode commands share their flags
	for _, cmd := range []*cobra.Command{progCmd, bankCmd, virtbankCmd} {
		cmd.Flags().IntVarP(&number, "number", "n", 0, "The number of the bank/prog/virtbank to list or dump (default all)")
		cmd.Flags().StringVarP(&dumpFormat, "dump", "d", "", `Actually dump (otherwise only list): "syx", "bin" or "mid"`)
		cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Replaces the PROG/BANK/VIRTBANK filename stem, may include directories")
		cmd.Flags().BoolVarP(&listFlag, "list", "l", false, "Concise listing, 5 programs per line")
		cmd.Flags().IntVarP(&channel, "channel", "c", 1, "SysEx MIDI channel (1-16)")
		cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing output files")
	}
	progCmd.Flags().BoolVar(&withDeleted, "deleted", false, "Include deleted programs")
	virtbankCmd.Flags().BoolVar(&withDeleted, "deleted", false, "Include deleted programs")

	// syx2bin command
	syx2binCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .bin file path")

	// send command
	sendCmd.Flags().StringVar(&portName, "port", "", "MIDI output port name (substring, default first port)")
	sendCmd.Flags().DurationVar(&sendDelay, "delay", 500*time.Millisecond, "Pause between SysEx messages")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(progCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(virtbankCmd)
	rootCmd.AddCommand(syx2binCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func getConverter() *converter.Converter {
	return converter.New(devices.NewSQ80())
}

func getOptions(cmd *cobra.Command) (extract.Options, error) {
	opts := extract.Options{
		Number:  number,
		Prefix:  prefix,
		List:    listFlag,
		Deleted: withDeleted,
		Force:   force,
	}

	if cmd.Flags().Changed("number") && number <= 0 {
		return opts, extract.ErrNumberZero
	}

	if dumpFormat != "" {
		format, err := converter.ParseFormat(dumpFormat)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}

	if channel < 1 || channel > 16 {
		return opts, fmt.Errorf("invalid MIDI channel %d (1-16)", channel)
	}
	opts.Channel = uint8(channel - 1)

	return opts, nil
}

func runMode(mode extract.Mode) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		opts, err := getOptions(cmd)
		if err != nil {
			return err
		}
		if err := opts.Validate(mode); err != nil {
			return err
		}

		img, err := disk.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = img.Close() }()

		return extract.New(img, getConverter(), cmd.OutOrStdout(), opts).Run(mode)
	}
}

func runSyxToBin(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := outputFile
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".bin"
	}

	conv := getConverter()
	if err := conv.ConvertFile(input, output); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %s dump %s -> %s\n", conv.GetDevice().Name(), input, output)
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv := getConverter()
	msgs, err := conv.ReadMessages(input)
	if err != nil {
		return err
	}
	// refuse anything the SQ80 would not understand
	if _, err := conv.Decode(msgs); err != nil {
		return err
	}

	out, closePort, err := transmit.OpenPort(portName)
	if err != nil {
		return err
	}
	defer closePort()

	fmt.Fprintf(cmd.OutOrStdout(), "Sending %d %s message(s) from %s to %s...\n", len(msgs), conv.GetDevice().Name(), input, out.String())
	n, err := transmit.NewSender(out, sendDelay).SendAll(cmd.Context(), msgs)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %d message(s)\n", n)
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	names, err := transmit.ListPorts()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No MIDI output ports found")
		return nil
	}
	for i, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d: %s\n", i, name)
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
