package dump1030

/*------------------------------------------------------------------
 *
 * Name:	dump1030
 *
 * Purpose:	Passive detector for SSR uplink interrogations.
 *
 * Description:	Listens on 1030 MHz, where secondary surveillance
 *		radars interrogate aircraft, and counts the Mode A,
 *		Mode C and Mode S interrogations heard, including the
 *		All-Call variants.
 *
 * Examples:	Count what is in a capture made with
 *		rtl_sdr -f 1030000000 -s 2500000 capture.bin
 *
 *			dump1030 -f capture.bin --order
 *
 *		Watch a live dongle served by rtl_tcp, reporting
 *		every 16 MiB of samples:
 *
 *			dump1030 --rtltcp 127.0.0.1:1234 -s 16777216 -c
 *
 *		Work out thresholds for the local noise level:
 *
 *			dump1030 -f capture.bin --blmode --blmode-out site.yaml
 *			dump1030 -f capture.bin --profile site.yaml
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
)

func parseGain(s string, cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		cfg.MaxGain = true
		cfg.AutoGain = false
	case "auto":
		cfg.MaxGain = false
		cfg.AutoGain = true
	default:
		var g, err = strconv.ParseFloat(s, 64)
		if err != nil || g < 0 {
			return fmt.Errorf("%q: %w", s, ErrInvalidGain)
		}

		cfg.MaxGain = false
		cfg.AutoGain = false
		cfg.GainDB = g
	}

	return nil
}

func Dump1030Main() {
	var device = pflag.IntP("device", "d", 0, `Index of the dongle rtl_tcp was started with (rtl_tcp -d N).  Only marks
that dongle in the list printed when the device can't be opened.`)
	var file = pflag.StringP("file", "f", "", "Read I/Q samples from this file instead of a device.  .zst files are decompressed.")
	var rtltcpAddr = pflag.String("rtltcp", DefaultRTLTCPAddr, "Address of the rtl_tcp server for the device.")
	var gain = pflag.StringP("gain", "g", "", "Tuner gain in dB, or \"auto\".  Default is the highest gain available.")
	var agc = pflag.Bool("agc", false, "Enable the RTL2832 digital AGC.")
	var downlink = pflag.Bool("dl", false, "Listen on the 1090 MHz downlink.  Not implemented.")
	var freq = pflag.Uint32("freq", UplinkTuning.FrequencyHz, "Centre frequency in Hz.  Detection only works at 1030000000.")
	var rate = pflag.Uint32("rate", UplinkTuning.SampleRate, "Sample rate.  Detection only works at 2500000.")
	var size = pflag.IntP("size", "s", 0, `Bytes of I/Q data per cycle.  16384 or more is rounded down to a multiple
of 16384, less than 512 means the default of 262144.  Without it a file is read whole.`)

	var diff = pflag.Uint8("diff", 0, "Minimum amplitude difference between a pulse and a non pulse not next to it.")
	var diffClose = pflag.Uint8("diffclose", 0, "Minimum amplitude difference between a pulse and a non pulse next to it.")
	var diffRatio = pflag.Float64("diffratio", 0, "Maximum non pulse / pulse amplitude ratio, non pulse not next to the pulse.")
	var diffRatioClose = pflag.Float64("diffratioclose", 0, "Maximum non pulse / pulse amplitude ratio, non pulse next to the pulse.")
	var diffRatioP4 = pflag.Float64("diffratiop4", 0, "As --diffratio, for the P4 pulse only.")
	var diffRatioCloseP4 = pflag.Float64("diffratioclosep4", 0, "As --diffratioclose, for the P4 pulse only.")
	var mpa = pflag.Uint8("mpa", 0, "Minimum amplitude where there should be a pulse.")
	var mnf = pflag.Uint8("mnf", 0, "Maximum noise floor amplitude where there shouldn't be a pulse.")
	var mnfc = pflag.Uint8("mnfc", 0, "Maximum noise floor amplitude where there shouldn't be a pulse, next to a pulse.")
	var profile = pflag.String("profile", "", "Read thresholds from this YAML file.  Options given on the command line win.")

	var blmode = pflag.Bool("blmode", false, "Print recommended --mpa, --mnf and --mnfc based on the messages found.")
	var blmodeOut = pflag.String("blmode-out", "", "Write the recommended thresholds to this YAML profile.")
	var order = pflag.Bool("order", false, "Print the sequence of recognized interrogations.")
	var msgs = pflag.Bool("msgs", false, "Print every recognized interrogation with its amplitudes.")
	var printAll = pflag.Bool("print", false, "Print all amplitudes.")
	var continuous = pflag.BoolP("continuous", "c", false, "Keep detecting and reporting.  --size sets the reporting interval.")
	var timestampFormat = pflag.StringP("timestamp-format", "T", "", "Precede each report with 'strftime' format time stamp.")

	var logLevel = pflag.String("log-level", "info", "Diagnostic level: debug, info, warn or error.")
	var logFile = pflag.StringP("log-file", "L", "", "Append recognized interrogations to this CSV file.")
	var logDir = pflag.StringP("log-dir", "l", "", "Write recognized interrogations to daily CSV files in this directory.")
	var metricsAddr = pflag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9130.")
	var dnsSD = pflag.Bool("dns-sd", false, "Announce the metrics endpoint with DNS-SD.")
	var dnsSDName = pflag.String("dns-sd-name", "", "DNS-SD service name.  Default is \"dump1030 on <hostname>\".")
	var mqttBroker = pflag.String("mqtt-broker", "", "Publish cycle statistics to this MQTT broker, e.g. tcp://localhost:1883.")
	var mqttTopic = pflag.String("mqtt-topic", DefaultConfig().MQTTTopic, "MQTT topic for cycle statistics.")
	var version = pflag.BoolP("version", "v", false, "Print version and exit.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Detect SSR uplink interrogations on 1030 MHz.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Threshold defaults: --diff 10 --diffclose 5 --diffratio 0.25 --diffratioclose 0.75\n")
		fmt.Fprintf(os.Stderr, "--diffratiop4 0.5 --diffratioclosep4 1.5 --mpa 0 --mnf 255 --mnfc 255\n")
	}

	pflag.CommandLine.Init(os.Args[0], pflag.ContinueOnError)

	// !!! PARSE !!!
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "No commands recognized: %s\n", err)
		pflag.Usage()
		os.Exit(1)
	}

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *version {
		printVersion(os.Stdout, false)
		os.Exit(0)
	}

	if err := logInit(*logLevel); err != nil {
		logger.Error("bad option", "err", err)
		pflag.Usage()
		os.Exit(1)
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "No commands recognized: %s\n", strings.Join(pflag.Args(), " "))
		pflag.Usage()
		os.Exit(1)
	}

	if *downlink {
		logger.Error("bad option", "err", ErrDownlinkUnsupported)
		os.Exit(1)
	}

	var cfg = DefaultConfig()

	if *profile != "" {
		var detect, err = LoadProfile(*profile, cfg.Detect)
		if err != nil {
			logger.Error("loading profile", "err", err)
			os.Exit(1)
		}

		cfg.Detect = detect
	}

	var changed = pflag.CommandLine.Changed

	if changed("diff") {
		cfg.Detect.Diff = *diff
	}

	if changed("diffclose") {
		cfg.Detect.DiffClose = *diffClose
	}

	if changed("diffratio") {
		cfg.Detect.DiffRatio = *diffRatio
	}

	if changed("diffratioclose") {
		cfg.Detect.DiffRatioClose = *diffRatioClose
	}

	if changed("diffratiop4") {
		cfg.Detect.DiffRatioP4 = *diffRatioP4
	}

	if changed("diffratioclosep4") {
		cfg.Detect.DiffRatioCloseP4 = *diffRatioCloseP4
	}

	if changed("mpa") {
		cfg.Detect.MinPeakAmp = *mpa
	}

	if changed("mnf") {
		cfg.Detect.MaxNoiseFloor = *mnf
	}

	if changed("mnfc") {
		cfg.Detect.MaxNoiseFloorClose = *mnfc
	}

	cfg.Tuning = Tuning{FrequencyHz: *freq, SampleRate: *rate}
	cfg.File = *file
	cfg.RTLTCPAddr = *rtltcpAddr
	cfg.DeviceIndex = *device
	cfg.AGC = *agc

	if err := parseGain(*gain, &cfg); err != nil {
		logger.Error("bad option", "err", err)
		pflag.Usage()
		os.Exit(1)
	}

	switch {
	case changed("size"):
		cfg.Size = RoundBufferSize(*size)
	case cfg.File == "":
		cfg.Size = DefaultBufferSize
	}

	cfg.Baseline = *blmode
	cfg.BaselineOut = *blmodeOut
	cfg.PrintOrder = *order
	cfg.PrintMessages = *msgs
	cfg.PrintAll = *printAll
	cfg.Continuous = *continuous
	cfg.TimestampFormat = *timestampFormat
	cfg.LogFile = *logFile
	cfg.LogDir = *logDir
	cfg.MetricsAddr = *metricsAddr
	cfg.DNSSD = *dnsSD
	cfg.DNSSDName = *dnsSDName
	cfg.MQTTBroker = *mqttBroker
	cfg.MQTTTopic = *mqttTopic

	if err := cfg.Validate(); err != nil {
		logger.Error("bad option", "err", err)
		pflag.Usage()
		os.Exit(1)
	}

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, cfg, os.Stdout); err != nil {
		logger.Error("dump1030 failed", "err", err)
		stop()
		os.Exit(1)
	}
}

/*------------------------------------------------------------------
 *
 * Name:	Run
 *
 * Purpose:	Set everything up from cfg and run until the input is
 *		used up, one cycle is done (when not continuous) or ctx
 *		is cancelled.
 *
 * Inputs:	out	- Where the reports go.
 *
 *------------------------------------------------------------------*/

func Run(ctx context.Context, cfg Config, out io.Writer) error {
	var reporter, reporterErr = NewReporter(out, ReportOptions{
		Continuous:      cfg.Continuous,
		PrintOrder:      cfg.PrintOrder,
		PrintMessages:   cfg.PrintMessages,
		PrintAll:        cfg.PrintAll,
		Baseline:        cfg.Baseline,
		TimestampFormat: cfg.TimestampFormat,
	})
	if reporterErr != nil {
		return reporterErr
	}

	var detector, detectorErr = NewDetector(cfg.Detect, cfg.Tuning)

	switch {
	case errors.Is(detectorErr, ErrUnsupportedTuning):
		logger.Warn("detection bypassed, nothing will be found", "err", detectorErr)
	case detectorErr != nil:
		return detectorErr
	}

	if cfg.File == "" && cfg.DeviceIndex != 0 {
		logger.Warn("the rtl_tcp server picks the dongle, start it with rtl_tcp -d N to use another one",
			"device", cfg.DeviceIndex, "rtltcp", cfg.RTLTCPAddr)
	}

	var source Source
	if cfg.File != "" {
		source = &FileSource{Path: cfg.File, Size: cfg.Size, Continuous: cfg.Continuous}
	} else {
		source = &RTLTCPSource{
			Addr:        cfg.RTLTCPAddr,
			DeviceIndex: cfg.DeviceIndex,
			Tuning:      cfg.Tuning,
			Size:        cfg.Size,
			GainDB:      cfg.GainDB,
			AutoGain:    cfg.AutoGain,
			MaxGain:     cfg.MaxGain,
			AGC:         cfg.AGC,
			Continuous:  cfg.Continuous,
		}
	}

	var p = &Pipeline{ //nolint:exhaustruct
		Source:    source,
		Detector:  detector,
		Reporter:  reporter,
		Calibrate: cfg.Baseline || cfg.BaselineOut != "",
	}

	switch {
	case cfg.LogFile != "":
		var l = NewDetectionLog(false, cfg.LogFile)
		defer l.Close()

		p.Sinks = append(p.Sinks, l)
	case cfg.LogDir != "":
		var l = NewDetectionLog(true, cfg.LogDir)
		defer l.Close()

		p.Sinks = append(p.Sinks, l)
	}

	if cfg.BaselineOut != "" {
		p.Sinks = append(p.Sinks, &ProfileWriter{Path: cfg.BaselineOut, Base: cfg.Detect})
	}

	if cfg.MetricsAddr != "" {
		var m = NewMetrics()

		var port, err = m.Serve(ctx, cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}

		p.Sinks = append(p.Sinks, m)

		if cfg.DNSSD {
			dnsSDAnnounce(ctx, cfg.DNSSDName, port)
		}
	}

	if cfg.MQTTBroker != "" {
		var runID = newRunID()

		var client, err = ConnectMQTT(cfg.MQTTBroker, runID)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)

		p.Sinks = append(p.Sinks, NewMQTTSink(client, cfg.MQTTTopic, runID))
	}

	var runErr = p.Run(ctx)

	var devErr *DeviceError
	if errors.As(runErr, &devErr) {
		var devs, listErr = ListDevices()
		if listErr != nil {
			logger.Warn("can't list devices", "err", listErr)
		}

		printDevices(os.Stderr, devs, cfg.DeviceIndex)
	}

	return runErr
}
