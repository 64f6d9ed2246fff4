// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

// =============================================================================
// REPL
// =============================================================================

// newReplCmd is the line-based fallback for terminals where the full TUI is
// unwelcome (dumb terminals, scripts, screen readers).
func newReplCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Chat from a plain prompt instead of the TUI",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			store, err := app.Store()
			if err != nil {
				return err
			}

			guest := store.GuestMode() || store.User() == nil
			userID := "guest"
			if u := store.User(); u != nil && !guest {
				userID = u.UserID
			}
			if guest {
				fmt.Println("Guest mode: this conversation will not be saved.")
			}

			prompt := liner.NewLiner()
			defer prompt.Close()
			prompt.SetCtrlCAborts(true)

			historyPath := filepath.Join(store.Dir(), "repl_history")
			if f, err := os.Open(historyPath); err == nil {
				prompt.ReadHistory(f)
				f.Close()
			}
			defer func() {
				if f, err := os.Create(historyPath); err == nil {
					prompt.WriteHistory(f)
					f.Close()
				}
			}()

			var sessionID *string
			for {
				input, err := prompt.Prompt("you> ")
				if err == liner.ErrPromptAborted || err == io.EOF {
					fmt.Println()
					return nil
				}
				if err != nil {
					return err
				}

				input = strings.TrimSpace(input)
				switch input {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				case "/new":
					sessionID = nil
					fmt.Println("Started a new conversation.")
					continue
				}
				prompt.AppendHistory(input)

				if !guest && sessionID == nil {
					id, err := client.CreateChat(cmd.Context(), userID)
					if err != nil {
						fmt.Fprintf(os.Stderr, "error: %v\n", err)
						continue
					}
					sessionID = &id
				}

				result, err := client.SendMessage(cmd.Context(), userID, input, sessionID)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}

				printReply(os.Stdout, result.Reply)
				if len(result.Options) > 0 {
					fmt.Printf("suggestions: %s\n", strings.Join(result.Options, " | "))
				}
			}
		},
	}
}

// =============================================================================
// REPLY FORMATTING
// =============================================================================

// replySegment is a run of prose or one fenced code block.
type replySegment struct {
	code bool
	lang string
	text string
}

// splitFenced splits text on ``` fences. An unterminated fence runs to the
// end of the text.
func splitFenced(text string) []replySegment {
	var segments []replySegment
	lines := strings.Split(text, "\n")

	var buf []string
	inCode := false
	lang := ""

	flush := func() {
		if len(buf) == 0 {
			return
		}
		segments = append(segments, replySegment{
			code: inCode,
			lang: lang,
			text: strings.Join(buf, "\n"),
		})
		buf = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			flush()
			if !inCode {
				lang = strings.TrimPrefix(strings.TrimSpace(line), "```")
			} else {
				lang = ""
			}
			inCode = !inCode
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return segments
}

// printReply writes a reply, syntax highlighting fenced code blocks.
func printReply(w io.Writer, reply string) {
	for _, seg := range splitFenced(reply) {
		if !seg.code {
			fmt.Fprintln(w, seg.text)
			continue
		}
		lang := seg.lang
		if lang == "" {
			lang = "text"
		}
		if err := quick.Highlight(w, seg.text, lang, "terminal256", "monokai"); err != nil {
			fmt.Fprintln(w, seg.text)
			continue
		}
		fmt.Fprintln(w)
	}
}
