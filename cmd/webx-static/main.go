package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dqx0.com/go/web/internal/obs"
	"dqx0.com/go/web/webx"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	root := flag.String("root", "web", "static file root")
	limit := flag.Int("limit", 1024, "per-line/body byte limit")
	clients := flag.Int("clients", 10, "soft connection ceiling")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	w := webx.NewWeb()

	w.Route("*", webx.MethodBefore, func(f *webx.Flow, args ...any) error {
		f.Var["user"] = f.Cookie["user"]
		return nil
	})

	w.Route("*", webx.MethodAfter, func(f *webx.Flow, args ...any) error {
		f.Tail.Set("Access-Control-Allow-Origin", "*")
		if u, _ := f.Var["user"].(string); u != "" {
			f.SetCookie("user", u, &webx.CookieAttrs{MaxAge: 3600})
		}
		if !f.Handled() {
			f.SendText("!!! LOST !!!", webx.WithStatus(404, "LOST"))
		}
		return nil
	})

	w.Route("api/echo", "post", func(f *webx.Flow, args ...any) error {
		v, err := f.RecvJSON()
		if err != nil {
			return err
		}
		f.SendJSON(map[string]any{"echo": v})
		return nil
	})

	w.Route("*", "get", func(f *webx.Flow, args ...any) error {
		p := f.Path
		if p == "" {
			p = "index.html"
		}
		f.SendFile(filepath.Join(*root, filepath.Clean("/"+p)))
		return nil
	})

	srv := &webx.Server{
		Web:        w,
		Addr:       *addr,
		Limit:      *limit,
		MaxClients: *clients,
		Logger:     obs.ZapLogger{L: logger},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", *addr))
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, webx.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
