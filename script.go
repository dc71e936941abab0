package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"hangulfun/log"
	"hangulfun/player"
)

const scriptWait = 5 * time.Second

var scriptMoves = map[string]player.Direction{
	"UP":       player.PrevLine,
	"DOWN":     player.NextLine,
	"LEFT":     player.PrevSyllable,
	"RIGHT":    player.NextSyllable,
	"NEXTWORD": player.NextWord,
	"PREVWORD": player.PrevWord,
}

// runScript drives a started controller from line commands instead of the
// TUI. It returns at QUIT or end of input, or with the session's error.
func runScript(ctrl *player.Controller, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		if cmd == "" || strings.HasPrefix(cmd, "#") {
			continue
		}
		if dir, ok := scriptMoves[cmd]; ok {
			ctrl.Navigate(dir)
			continue
		}

		var err error
		switch cmd {
		case "ENTER":
			if err = ctrl.Activate(); err == nil {
				line := ctrl.Session().Timeline().Line(ctrl.Snapshot().Cursor.Line)
				log.Practice(ctrl.Song().Audio, line.Text)
			}
		case "PAUSE":
			err = ctrl.TogglePause()
		case "REWIND":
			err = ctrl.Rewind()
		case "FOLLOW":
			ctrl.Follow()
		case "WAIT_SEEK":
			err = waitSeek(ctrl)
		case "WAIT_END":
			select {
			case <-ctrl.Done():
			case <-time.After(scriptWait):
				err = fmt.Errorf("timed out waiting for the song to end")
			}
			if err == nil {
				err = ctrl.Err()
			}
		case "STATE":
			fmt.Fprintln(out, formatState(ctrl.Snapshot()))
		case "QUIT":
			return nil
		default:
			if ms, ok := strings.CutPrefix(cmd, "SLEEP "); ok {
				n, convErr := strconv.Atoi(ms)
				if convErr != nil {
					return fmt.Errorf("bad SLEEP argument %q", ms)
				}
				time.Sleep(time.Duration(n) * time.Millisecond)
				continue
			}
			return fmt.Errorf("unknown script command %q", cmd)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
	}
	return scanner.Err()
}

func waitSeek(ctrl *player.Controller) error {
	deadline := time.Now().Add(scriptWait)
	for time.Now().Before(deadline) {
		if _, seeking := ctrl.Snapshot().Mode.(player.Seeking); !seeking {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for seek")
}

func formatState(st player.State) string {
	c := st.Cursor
	return fmt.Sprintf("mode=%s line=%d cursor=%d/%d/%d following=%t",
		st.Mode, st.Line, c.Line, c.Word, c.Syllable, st.Following)
}
