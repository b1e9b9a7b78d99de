// Package bot wires the Telegram transport around the checkout flow.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/kiris-store/checkout-bot/internal/bot/handlers"
	"github.com/kiris-store/checkout-bot/internal/bot/keyboard"
	"github.com/kiris-store/checkout-bot/internal/checkout"
	errors "github.com/kiris-store/checkout-bot/internal/errors"
	"github.com/kiris-store/checkout-bot/internal/i18n"
	"github.com/kiris-store/checkout-bot/internal/idempotency"
	"github.com/kiris-store/checkout-bot/internal/middleware"
	"github.com/kiris-store/checkout-bot/internal/state"
	"github.com/kiris-store/checkout-bot/pkg/config"
)

// Bot wraps telebot.Bot with the dependencies required to run the payment flow.
type Bot struct {
	telebot            *telebot.Bot
	log                *slog.Logger
	cfg                config.Config
	fsm                state.Machine
	checkout           *checkout.Service
	translator         i18n.Translator
	rateLimitMw        *middleware.RateLimitMiddleware
	router             *Router
	dispatcher         *Dispatcher
	keyboard           *keyboard.Builder
	errHandler         *errors.Handler
	idempotencyManager idempotency.Manager
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	fsm state.Machine,
	svc *checkout.Service,
	translator i18n.Translator,
	idempotencyManager idempotency.Manager,
	rateLimitMw *middleware.RateLimitMiddleware,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)
	dispatcher := NewDispatcher(fsm, log)
	router := NewRouter(dispatcher, log)
	errHandler := errors.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:            tb,
		log:                log,
		cfg:                cfg,
		fsm:                fsm,
		checkout:           svc,
		translator:         translator,
		rateLimitMw:        rateLimitMw,
		router:             router,
		dispatcher:         dispatcher,
		keyboard:           kb,
		errHandler:         errHandler,
		idempotencyManager: idempotencyManager,
	}

	b.setupRouter()

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter() {
	if b.router == nil {
		return
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(middleware.Idempotency(b.idempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(middleware.Metrics)

	t := b.translator

	pagar := handlers.NewPagarHandler(b.fsm, b.checkout, b.keyboard, t, b.log)
	b.router.RegisterCommand(CommandStart, pagar)
	b.router.RegisterCommand(CommandPagar, pagar)
	b.router.RegisterCommand(CommandCancelar, handlers.NewCancelHandler(b.fsm, t, b.log))

	b.router.RegisterCallback(CallbackNetworkPrefix, handlers.NewCryptoChoiceHandler(b.fsm, b.checkout, t, b.log))
	b.router.RegisterCallback(CallbackConfirmYes, handlers.NewConfirmYesHandler(b.fsm, b.checkout, t, b.log))
	b.router.RegisterCallback(CallbackConfirmNo, handlers.NewConfirmNoHandler(b.fsm, t, b.log))

	b.dispatcher.RegisterStateHandler(state.StateAwaitingOrderNumber,
		handlers.NewOrderNumberHandler(b.fsm, b.checkout, b.keyboard, t, b.log))
	b.dispatcher.RegisterStateHandler(state.StateAwaitingTransactionHash,
		handlers.NewHashHandler(b.fsm, b.keyboard, t, b.log))
	b.dispatcher.RegisterStateHandler(state.StateClosed, handlers.NewClosedHandler(t))

	b.router.SetDefault(handlers.NewIdleHandler(t))
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
