package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a handler with its match rule and middleware.
// It encapsulates all information needed to register the handler with the
// Telegram bot instance.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all bot handlers:
// commands, menu button texts and callback queries, with admin middleware
// where required.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}

	// The main menu is a persistent reply keyboard; its buttons arrive as
	// exact message texts. Slash equivalents are registered alongside.
	trackerHandler := NewTrackerHandler(deps)
	mapHandler := NewMapHandler(deps)
	pitstopHandler := NewPitstopHandler(deps)
	teamChatHandler := NewTeamChatHandler(deps)

	handlers["btn:tracker"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     btnTracker,
		Handler:     trackerHandler,
		MatchType:   tgbot.MatchTypeExact,
	}
	handlers["/tracker"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "tracker",
		Handler:     trackerHandler,
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["btn:map"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     btnMap,
		Handler:     mapHandler,
		MatchType:   tgbot.MatchTypeExact,
	}
	handlers["/map"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "map",
		Handler:     mapHandler,
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["btn:pitstop"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     btnPitstop,
		Handler:     pitstopHandler,
		MatchType:   tgbot.MatchTypeExact,
	}
	handlers["/pitstop"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "pitstop",
		Handler:     pitstopHandler,
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["btn:team_chat"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     btnTeamChat,
		Handler:     teamChatHandler,
		MatchType:   tgbot.MatchTypeExact,
	}

	// User-facing callbacks.
	handlers["cb:tandem_name"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     cbTandemName,
		Handler:     NewTandemNameHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
	}
	handlers["cb:tandem_disband"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     cbTandemDisband,
		Handler:     NewTandemDisbandHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
	}
	handlers["cb:tracker_toggle"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     cbTrackerTogglePrefix,
		Handler:     NewTrackerToggleHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}
	handlers["cb:tracker_refresh"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     cbTrackerRefresh,
		Handler:     NewTrackerRefreshHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
	}
	handlers["cb:challenge_done"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     cbChallengeDonePrefix,
		Handler:     NewChallengeDoneHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}

	// Admin surface.
	adminMiddleware := []tgbot.Middleware{AdminOnly(deps)}

	handlers["/admin"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "admin",
		Handler:     NewAdminHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  adminMiddleware,
	}
	handlers["cb:admin"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "admin_",
		Handler:     NewAdminCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  adminMiddleware,
	}

	handlers["/test_reset"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "test_reset",
		Handler:     NewTestResetHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  adminMiddleware,
	}
	handlers["/test_challenges"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "test_challenges",
		Handler:     NewTestChallengesHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  adminMiddleware,
	}
	handlers["/test_messages"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "test_messages",
		Handler:     NewTestMessagesHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  adminMiddleware,
	}
	handlers["/test_reminders"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "test_reminders",
		Handler:     NewTestRemindersHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  adminMiddleware,
	}

	return handlers
}
