package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/kbukum/chatgate/chat"
	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/llm"
	"github.com/kbukum/chatgate/util"
)

// runner executes one stateful command.
type runner struct {
	cli     *cliArgs
	session *session
	in      io.Reader
	out     io.Writer
}

func (r *runner) run(ctx context.Context, cmd string) error {
	s := r.session
	switch cmd {
	case "new":
		id, err := s.store.CreateConversation(ctx, r.cli.New.Model)
		if err != nil {
			return err
		}
		conv, _ := s.store.Conversation(id)
		fmt.Fprintf(r.out, "%s\t%s\t%s\n", conv.ID, conv.Title, conv.Model)
		return nil

	case "ls":
		r.list()
		return nil

	case "show":
		conv, err := r.conversation(r.cli.Show.ID)
		if err != nil {
			return err
		}
		r.show(conv)
		return nil

	case "switch":
		if err := s.store.SwitchConversation(ctx, r.cli.Switch.ID); err != nil {
			return err
		}
		conv, _ := s.store.CurrentConversation()
		fmt.Fprintf(r.out, "Switched to %q.\n", conv.Title)
		return nil

	case "rm":
		if err := s.store.DeleteConversation(ctx, r.cli.Rm.ID); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Deleted %s.\n", r.cli.Rm.ID)
		return nil

	case "rename":
		title := strings.Join(r.cli.Rename.Title, " ")
		if err := s.store.RenameConversation(ctx, r.cli.Rename.ID, title); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Renamed %s to %q.\n", r.cli.Rename.ID, strings.TrimSpace(title))
		return nil

	case "clear":
		return r.clear(ctx)

	case "send":
		return r.send(ctx)

	case "config":
		return r.config(ctx)

	case "sweep":
		n, err := s.attachments.Sweep(ctx, s.store.AttachmentRefs())
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Released %d unreferenced attachment(s).\n", n)
		return nil
	}
	return fmt.Errorf("unrecognized command: %s", cmd)
}

// conversation returns id, or the current conversation when id is empty.
func (r *runner) conversation(id string) (chat.Conversation, error) {
	if id == "" {
		conv, ok := r.session.store.CurrentConversation()
		if !ok {
			return chat.Conversation{}, errors.NotFound("conversation", "current")
		}
		return conv, nil
	}
	conv, ok := r.session.store.Conversation(id)
	if !ok {
		return chat.Conversation{}, errors.NotFound("conversation", id)
	}
	return conv, nil
}

func (r *runner) list() {
	convs := r.session.store.Conversations()
	if len(convs) == 0 {
		fprintln(r.out, "No conversations.")
		return
	}
	current := r.session.store.CurrentID()
	for _, c := range convs {
		mark := " "
		if c.ID == current {
			mark = "*"
		}
		fmt.Fprintf(r.out, "%s %s\t%s\t%s\t%d messages\n", mark, c.ID, c.Title, c.Model, len(c.Messages))
	}
}

func (r *runner) show(conv chat.Conversation) {
	fmt.Fprintf(r.out, "%s (%s)\n", conv.Title, conv.Model)
	for _, m := range conv.Messages {
		fmt.Fprintf(r.out, "\n[%s] %s\n", m.Role, m.Content)
		for _, a := range m.Attachments {
			fmt.Fprintf(r.out, "  + %s (%s, %d bytes)\n", a.Name, a.MimeType, a.Size)
		}
	}
}

func (r *runner) clear(ctx context.Context) error {
	store := r.session.store
	if r.cli.Clear.All {
		if err := store.ClearAllConversations(ctx); err != nil {
			return err
		}
		fprintln(r.out, "Deleted every conversation.")
		return nil
	}
	conv, err := r.conversation(r.cli.Clear.ID)
	if err != nil {
		return err
	}
	if err := store.ClearConversation(ctx, conv.ID); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Cleared %q.\n", conv.Title)
	return nil
}

func (r *runner) send(ctx context.Context) error {
	text := strings.Join(r.cli.Send.Text, " ")
	if text == "" && r.in != nil {
		b, err := io.ReadAll(r.in)
		if err != nil {
			return err
		}
		text = string(b)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.BadRequest("Nothing to send.")
	}

	var files []chat.FileAttachment
	for _, path := range r.cli.Send.Attach {
		att, err := r.session.attachments.AddFile(ctx, path)
		if err != nil {
			return err
		}
		files = append(files, att)
	}

	reply, err := r.session.sender.Send(ctx, text, files...)
	if reply.Content != "" {
		fprintln(r.out, reply.Content)
	}
	return err
}

func (r *runner) config(ctx context.Context) error {
	store := r.session.store
	flags := r.cli.Config
	var u chat.ConfigUpdate
	changed := false
	if flags.Theme != "" {
		u.Theme = &flags.Theme
		changed = true
	}
	if flags.Model != "" {
		u.DefaultModel = &flags.Model
		changed = true
	}
	if flags.Temperature != "" {
		t, err := strconv.ParseFloat(flags.Temperature, 64)
		if err != nil {
			return errors.Validation("temperature must be a number").WithCause(err)
		}
		u.Temperature = &t
		changed = true
	}
	if flags.MaxTokens != 0 {
		u.MaxTokens = &flags.MaxTokens
		changed = true
	}
	if len(flags.APIKey) > 0 {
		u.APIKeys = flags.APIKey
		changed = true
	}
	if changed {
		if err := store.UpdateConfig(ctx, u); err != nil {
			return err
		}
	}

	cfg := store.Config()
	fmt.Fprintf(r.out, "theme: %s\n", cfg.Theme)
	fmt.Fprintf(r.out, "default model: %s\n", cfg.DefaultModel)
	fmt.Fprintf(r.out, "temperature: %g\n", cfg.Temperature)
	fmt.Fprintf(r.out, "max tokens: %d\n", cfg.MaxTokens)
	kinds := make([]string, 0, len(cfg.APIKeys))
	for k := range cfg.APIKeys {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(r.out, "api key %s: %s\n", k, util.MaskSecret(cfg.APIKeys[k], 4))
	}
	return nil
}

func printModels(w io.Writer) {
	for _, kind := range llm.Providers {
		fmt.Fprintf(w, "%s (%s)\n", kind.DisplayName(), kind)
		for _, m := range llm.ModelsByProvider(kind) {
			fmt.Fprintf(w, "  %-18s %s\n", m.ID, m.Name)
		}
	}
	fprintln(w, "Any other model id gets the local fallback reply.")
}

func fprintln(w io.Writer, s string) {
	fmt.Fprintln(w, s)
}
