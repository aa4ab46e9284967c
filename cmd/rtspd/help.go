package main

import (
	"fmt"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagBind        string
	flagMount       string
	flagConfigFile  string
	flagStdin       bool
	flagHelp        bool
	flagVersion     bool
)

func init() {
	flag.StringVarP(&flagBind, "bind", "b", "0.0.0.0:8554", "Address to listen on")
	flag.StringVarP(&flagMount, "mount", "m", "/stream", "Default mount path")
	flag.StringVarP(&flagConfigFile, "config", "c", "", "Optional TOML configuration file")
	flag.BoolVarP(&flagStdin, "stdin", "", false, "Read an Annex-B H.264 stream from stdin (length-prefixed frames)")

	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `RTSP/RTP live H.264 streaming server

Usage: rtspd [OPTION]...

Network:
  -b, --bind=ADDR        Address to listen on (default: 0.0.0.0:8554)
  -m, --mount=PATH       Default mount path (default: /stream)

Configuration:
  -c, --config=FILE      Optional TOML configuration file

Input:
      --stdin            Read length-prefixed H.264 frames from stdin

Miscellaneous:
  -h, --help             Prints this help message and exits
  -v, --version          Prints version information and exits

Report bugs at: https://github.com/tidewave/rtspd/issues`

// help prints the banner and usage, then the caller should exit.
func help() {
	r := color.New(color.FgRed)
	y := color.New(color.FgYellow)
	b := color.New(color.FgCyan)

	//         _                   _
	//  _ __ | |_  ___  _ __    __| |
	// | '__|| __|/ __|| '_ \  / _` |
	// | |   | |_ \__ \| |_) || (_| |
	// |_|    \__||___/| .__/  \__,_|
	//                 |_|

	r.Printf(" ")
	y.Printf("_ __ ")
	b.Printf("| |_ ")
	y.Printf(" ___ ")
	r.Printf(" _ __  ")
	y.Printf("  ")
	b.Println(" _| |")

	r.Printf(" ")
	y.Printf("| '__|")
	b.Printf("| __|")
	y.Printf("/ __|")
	r.Printf("| '_ \\ ")
	y.Printf(" / _` |")
	b.Println("")

	r.Printf(" ")
	y.Printf("| |   ")
	b.Printf("| |_ ")
	y.Printf("\\__ \\")
	r.Printf("| |_) |")
	y.Printf("| (_| |")
	b.Println("")

	r.Printf(" ")
	y.Printf("|_|    ")
	b.Printf("\\__|")
	y.Printf("|___/")
	r.Printf("| .__/ ")
	y.Printf(" \\__,_|")
	b.Println("")

	fmt.Println(helpString)
}
