package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bankassist/internal/models"
	"bankassist/internal/service/assistant"
	"bankassist/internal/storage"
)

const chatHelp = "Commands: /actions  /quick <n>  /history  /exit"

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChat(ctx context.Context, opts *rootOptions, in io.Reader, out io.Writer) error {
	rt, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	svc := assistant.NewService(rt.gateway, storage.NewConversation(),
		assistant.WithLogger(rt.logger),
		assistant.WithTemperature(rt.cfg.LLM.Temperature),
		assistant.WithHistoryWindow(rt.cfg.LLM.HistoryWindow),
	)
	return newREPL(svc, in, out).run(ctx)
}

// repl is the terminal surface of one session.
type repl struct {
	svc    *assistant.Service
	in     *bufio.Scanner
	out    io.Writer
	styles *styles
}

func newREPL(svc *assistant.Service, in io.Reader, out io.Writer) *repl {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &repl{svc: svc, in: scanner, out: out, styles: defaultStyles()}
}

func (r *repl) run(ctx context.Context) error {
	r.banner()
	for {
		fmt.Fprint(r.out, r.styles.User.Render("you> "))
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := r.command(ctx, line); quit {
				return nil
			}
			continue
		}
		r.submit(ctx, func() (assistant.Reply, error) { return r.svc.Handle(ctx, line) })
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (r *repl) banner() {
	fmt.Fprintln(r.out, r.styles.Title.Render(assistant.AppTitle))
	fmt.Fprintln(r.out, assistant.AppTagline)
	fmt.Fprintln(r.out, r.styles.Help.Render(assistant.AppTip))
	fmt.Fprintln(r.out, r.styles.Help.Render(assistant.Escalation))
	fmt.Fprintln(r.out, r.styles.Help.Render(chatHelp))
	fmt.Fprintln(r.out)
}

// command handles a slash command and reports whether the session should end.
func (r *repl) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/exit", "/quit":
		fmt.Fprintln(r.out, r.styles.Help.Render("Goodbye."))
		return true
	case "/actions":
		for i, qa := range assistant.QuickActions() {
			fmt.Fprintf(r.out, "  %d. %s\n", i+1, qa.Label)
		}
	case "/history":
		r.printHistory(r.svc.History())
	case "/quick":
		actions := assistant.QuickActions()
		if len(fields) != 2 {
			r.notice("usage: /quick <n>")
			return false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(actions) {
			r.notice(fmt.Sprintf("pick a quick action between 1 and %d", len(actions)))
			return false
		}
		label := actions[n-1].Label
		fmt.Fprintln(r.out, r.styles.Help.Render(actions[n-1].Prompt))
		r.submit(ctx, func() (assistant.Reply, error) { return r.svc.HandleQuickAction(ctx, label) })
	default:
		r.notice(chatHelp)
	}
	return false
}

func (r *repl) submit(ctx context.Context, handle func() (assistant.Reply, error)) {
	reply, err := handle()
	if err != nil {
		r.notice(err.Error())
		return
	}
	r.printTurn(reply.Turn)
}

func (r *repl) printHistory(turns []models.Turn) {
	if len(turns) == 0 {
		r.notice("no messages yet")
		return
	}
	for _, turn := range turns {
		r.printTurn(turn)
	}
}

func (r *repl) printTurn(turn models.Turn) {
	label := r.styles.User.Render("you:")
	if turn.Role == models.RoleAssistant {
		label = r.styles.Assistant.Render("bankassist:")
	}
	fmt.Fprintf(r.out, "%s %s\n\n", label, turn.Content)
}

func (r *repl) notice(msg string) {
	fmt.Fprintln(r.out, r.styles.Notice.Render(msg))
}
