package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"notechat/internal/engine"
	"notechat/internal/errinfo"
	"notechat/internal/rpc"
)

type engineHandler func(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve JSON-RPC over stdio for an editor host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, true)
			if err != nil {
				return err
			}
			eng, err := a.engine(nil)
			if err != nil {
				return err
			}
			logger := a.logs.Logger.With().Str("component", "rpc").Logger()
			server := rpc.NewServer(engine.APIVersion, os.Stdin, os.Stdout, logger)
			eng.SetNotifier(server.Notify)

			register := func(method string, handler engineHandler) {
				server.Register(method, func(ctx context.Context, params json.RawMessage) (any, *rpc.Error) {
					result, info := handler(ctx, params)
					if info != nil {
						return nil, &rpc.Error{Message: info.Message(), Data: info}
					}
					return result, nil
				})
			}
			register("EngineGetInfo", eng.EngineGetInfo)
			register("ConversationRun", eng.ConversationRun)
			register("ConversationParse", eng.ConversationParse)
			register("ModelsList", eng.ModelsList)
			register("ProvidersGetStatus", eng.ProvidersGetStatus)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger.Info().Str("vault", a.vault.Root()).Msg("rpc.serving")
			return server.Serve(ctx)
		},
	}
}
