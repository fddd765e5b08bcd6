package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/gookit/color"

	"github.com/voltsparx/V-CHAT/internal/chat"
)

func main() {
	host := flag.String("host", "127.0.0.1", "server host")
	port := flag.Int("port", 65432, "server port")
	username := flag.String("username", "", "your username (required)")
	userColor := flag.String("color", "green", "username color: "+strings.Join(chat.ColorNames(), ", "))
	arrowColor := flag.String("arrow-color", "blue", "arrow color")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "--username is required")
		os.Exit(1)
	}
	for _, name := range []string{*userColor, *arrowColor} {
		if !chat.KnownColor(name) {
			fmt.Fprintf(os.Stderr, "unknown color %q, pick one of: %s\n", name, strings.Join(chat.ColorNames(), ", "))
			os.Exit(1)
		}
	}

	banner()

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		color.Red.Printf("[!] Could not connect to %s: %v\n", addr, err)
		color.Yellow.Println("    Is the server running? Right host and port? Firewall?")
		os.Exit(1)
	}
	defer conn.Close()

	color.Green.Printf("[+] Connected to %s as %s\n", addr, chat.Colorize(*userColor, "["+*username+"]"))

	// One-shot handshake, then plain chat lines.
	fmt.Fprintf(conn, "%s|%s|%s\n", *username, *userColor, *arrowColor)

	go receiveLoop(conn)

	sc := bufio.NewScanner(os.Stdin)
	w := bufio.NewWriter(conn)
	for sc.Scan() {
		line := sc.Text()
		if _, err := w.WriteString(line + "\n"); err != nil {
			color.Red.Println("[!] Connection lost.")
			return
		}
		if err := w.Flush(); err != nil {
			color.Red.Println("[!] Connection lost.")
			return
		}
		if strings.TrimSpace(line) == "/exit" {
			color.Yellow.Println("[*] Disconnecting...")
			return
		}
	}
}

func receiveLoop(conn net.Conn) {
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			color.Red.Println("[!] Disconnected from server.")
			os.Exit(0)
		}
		line = strings.TrimRight(line, "\r\n")
		if kind, ok := strings.CutPrefix(line, chat.SoundTokenPrefix); ok {
			ring(chat.SoundKind(kind))
			continue
		}
		fmt.Println(line)
	}
}

// ring is the local stand-in for sound playback: one terminal bell per
// event, whatever its kind.
func ring(_ chat.SoundKind) {
	fmt.Print("\a")
}

func banner() {
	orange := color.C256(214)
	orange.Println("══════════════════════════════")
	orange.Println("   V-CHAT  terminal  client   ")
	orange.Println("══════════════════════════════")
}
