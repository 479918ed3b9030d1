package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/app/conversation"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/app/journal"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

// DefaultAuthor is used when --name is not given.
const DefaultAuthor = "Participante"

func newChatCmd(load configLoader) *cobra.Command {
	var (
		name  string
		stage string
		docs  []string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Join a planning session from the terminal",
		Long: `chat starts a local session and reads messages from stdin.

Slash commands:
  /stage <brainstorm|research|draft|review>  switch the stage for next messages
  /board                                     print the current plan
  /log                                       print the latest actions
  /quit                                      leave`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			setupLogging(cfg)

			st, err := domain.ParseStage(stage)
			if err != nil {
				return err
			}

			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(docs) > 0 {
				loaded, err := readDocuments(docs)
				if err != nil {
					return err
				}
				h, err := a.svc.IngestDocuments(cmd.Context(), loaded)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d documento(s) indexado(s), %d trechos.\n", h.DocumentCount(), h.ChunkCount())
			}

			return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.svc, a.journal, name, st)
		},
	}

	cmd.Flags().StringVar(&name, "name", DefaultAuthor, "author name shown in the action log")
	cmd.Flags().StringVar(&stage, "stage", string(domain.StageBrainstorm), "initial stage")
	cmd.Flags().StringArrayVar(&docs, "doc", nil, "PDF or text file to index (repeatable)")
	return cmd
}

func readDocuments(paths []string) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		out = append(out, domain.Document{Name: filepath.Base(p), Data: data})
	}
	return out, nil
}

// runChat is the REPL loop. It returns nil on /quit or EOF.
func runChat(
	ctx context.Context,
	in io.Reader,
	out io.Writer,
	svc *conversation.Service,
	journalSvc *journal.Service,
	author string,
	stage domain.Stage,
) error {
	started, err := svc.StartSession(ctx, conversation.StartSessionInput{})
	if err != nil {
		return err
	}
	id := started.Session.ID

	fmt.Fprintf(out, "Sessão %s. Etapa: %s. Digite /quit para sair.\n", id, stage.Label())

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := handleSlash(ctx, out, svc, journalSvc, id, line, &stage)
			if err != nil {
				fmt.Fprintf(out, "erro: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		res, err := svc.SendMessage(ctx, conversation.SendMessageInput{
			SessionID: id,
			AuthorID:  author,
			Text:      line,
			Stage:     string(stage),
		})
		if err != nil {
			var ce *domain.CompletionError
			if errors.As(err, &ce) {
				fmt.Fprintln(out, "erro: o modelo não respondeu; a mensagem não foi registrada.")
				continue
			}
			fmt.Fprintf(out, "erro: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "\n%s\n\n", res.Reply)
	}
}

func handleSlash(
	ctx context.Context,
	out io.Writer,
	svc *conversation.Service,
	journalSvc *journal.Service,
	id domain.SessionID,
	line string,
	stage *domain.Stage,
) (bool, error) {
	fields := strings.Fields(line)

	switch fields[0] {
	case "/quit", "/exit":
		return true, nil

	case "/stage":
		if len(fields) < 2 {
			fmt.Fprintf(out, "etapa atual: %s\n", stage.Label())
			return false, nil
		}
		st, err := domain.ParseStage(fields[1])
		if err != nil {
			return false, err
		}
		*stage = st
		fmt.Fprintf(out, "etapa: %s\n", st.Label())
		return false, nil

	case "/board":
		sess, err := svc.GetSession(ctx, id)
		if err != nil {
			return false, err
		}
		if sess.State.Board == "" {
			fmt.Fprintln(out, "Nenhum plano definido ainda.")
			return false, nil
		}
		fmt.Fprintln(out, sess.State.Board)
		return false, nil

	case "/log":
		entries, err := journalSvc.RecentActions(ctx, id, 0)
		if err != nil {
			return false, err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "Nenhuma ação registrada.")
		}
		for _, e := range entries {
			fmt.Fprintf(out, "[%s] %s (%s): %s\n", e.Timestamp, e.AuthorID, e.Stage, e.Message)
		}

		counts, err := journalSvc.AuthorCounts(ctx, id)
		if err != nil {
			return false, err
		}
		authors := make([]string, 0, len(counts))
		for a := range counts {
			authors = append(authors, a)
		}
		sort.Strings(authors)
		for _, a := range authors {
			fmt.Fprintf(out, "%s: %d mensagem(ns)\n", a, counts[a])
		}
		return false, nil

	default:
		return false, fmt.Errorf("comando desconhecido %q", fields[0])
	}
}
