package main

import (
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/openrescue/sarcoord/internal/wshandler"
)

// getTimelineWsHandler streams a mission's timeline live. Only members get
// a feed; everyone else is closed immediately, mission existence included.
func getTimelineWsHandler(app *App) fiber.Handler {
	return websocket.New(func(ws *websocket.Conn) {
		defer ws.Close()

		missionID, err := strconv.Atoi(ws.Params("id"))
		if err != nil || missionID <= 0 {
			return
		}

		username, _ := ws.Locals(UsernameKey).(string)

		if _, err := app.resolver.Resolve(app.dbm.DB(), uint(missionID), username); err != nil {
			return
		}

		name := uuid.NewString()
		h := wshandler.NewHandler(app.logger, name, uint(missionID), ws)

		app.logger.Debug("ws listener connected")
		app.recorder.EntryCallback().SubscribeNamed(name, h.SendEntry)
		h.Listen()
		app.logger.Debug("ws listener disconnected")
	})
}
