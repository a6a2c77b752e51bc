package cli

import (
	"errors"

	"github.com/vbonduro/mealcam/internal/web"
)

type ServeCmd struct {
	Addr string `help:"Listen address. Defaults to LISTEN_ADDR."`
}

func (cmd *ServeCmd) Run(ctx *Context) error {
	addr := cmd.Addr
	if addr == "" {
		addr = ctx.ListenAddr
	}
	return web.NewServer(ctx.Service, ctx.PhotoStore, ctx.Logger).ListenAndServe(ctx.Ctx, addr)
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.printf("Running diagnostics...\n\n")
	hasError := false

	if err := ctx.Service.VerifyLedger(ctx.Ctx); err != nil {
		ctx.printf("%s\n   Error: %v\n", failStyle.Render("❌ Meal history: FAIL"), err)
		hasError = true
	} else {
		ctx.printf("%s (%d meals)\n", okStyle.Render("✓ Meal history: OK"), len(ctx.Service.ListMeals(ctx.Ctx)))
	}

	switch ok, err := ctx.Service.HasCredential(ctx.Ctx); {
	case err != nil:
		ctx.printf("%s\n   Error: %v\n", failStyle.Render("❌ API key: FAIL"), err)
		hasError = true
	case !ok:
		ctx.printf("%s\n   Run 'mealcam key set' before analyzing photos.\n", warnStyle.Render("⚠ API key: NOT SET"))
	default:
		ctx.printf("%s\n", okStyle.Render("✓ API key: OK"))
	}

	now := ctx.Service.Today()
	ctx.printf("%s %s (UTC%s), today is %s\n", okStyle.Render("✓ Time zone:"),
		ctx.Service.Location(), now.Format("-07:00"), now.Format("2006-01-02"))

	if hasError {
		return errors.New("diagnostics found problems")
	}
	return nil
}
