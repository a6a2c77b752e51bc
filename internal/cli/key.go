package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

type KeyCmd struct {
	Set   KeySetCmd   `cmd:"" help:"Store the recognition API key."`
	Clear KeyClearCmd `cmd:"" help:"Remove the stored recognition API key."`
}

type KeySetCmd struct {
	Value string `arg:"" help:"API key, or - to read it from stdin."`
}

func (cmd *KeySetCmd) Run(ctx *Context) error {
	value := cmd.Value
	if value == "-" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read key from stdin: %w", err)
		}
		value = strings.TrimSpace(line)
	}
	if err := ctx.Service.SetCredential(ctx.Ctx, value); err != nil {
		return err
	}
	ctx.printf("%s\n", okStyle.Render("✓ API key stored"))
	return nil
}

type KeyClearCmd struct{}

func (cmd *KeyClearCmd) Run(ctx *Context) error {
	if err := ctx.Service.ClearCredential(ctx.Ctx); err != nil {
		return err
	}
	ctx.printf("API key removed.\n")
	return nil
}
