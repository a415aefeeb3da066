package main

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/openrescue/sarcoord/internal/model"
)

func getMissionAssetsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		result, err := app.ledger.List(app.dbm.DB(), id, Username(ctx), ctx.QueryBool("include_removed", false))
		if err != nil {
			return errStatus(ctx, err)
		}

		return ctx.JSON(result)
	}
}

func addMissionAssetHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		var body struct {
			AssetID uint `json:"asset_id"`
		}

		if err := ctx.BodyParser(&body); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		if _, err := app.ledger.Attach(app.dbm.DB(), id, body.AssetID, Username(ctx)); err != nil {
			return errStatus(ctx, err)
		}

		return ctx.SendStatus(fiber.StatusCreated)
	}
}

func removeMissionAssetHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		aid, err := paramID(ctx, "aid")
		if err != nil {
			return errStatus(ctx, err)
		}

		if err := app.ledger.Detach(app.dbm.DB(), id, aid, Username(ctx)); err != nil {
			return errStatus(ctx, err)
		}

		return ctx.SendStatus(fiber.StatusNoContent)
	}
}

func getAssetStatusHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		aid, err := paramID(ctx, "aid")
		if err != nil {
			return errStatus(ctx, err)
		}

		status, err := app.ledger.CurrentStatus(app.dbm.DB(), id, aid, Username(ctx))
		if err != nil {
			return errStatus(ctx, err)
		}

		if status == nil {
			return ctx.SendStatus(fiber.StatusNotFound)
		}

		return ctx.JSON(model.ToAssetStatusDTO(status, aid))
	}
}

func setAssetStatusHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		aid, err := paramID(ctx, "aid")
		if err != nil {
			return errStatus(ctx, err)
		}

		var body struct {
			Status string `json:"status"`
			Notes  string `json:"notes"`
		}

		if err := ctx.BodyParser(&body); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		status, err := app.ledger.SetStatus(app.dbm.DB(), id, aid, Username(ctx), body.Status, body.Notes)
		if err != nil {
			return errStatus(ctx, err)
		}

		return ctx.Status(fiber.StatusCreated).JSON(model.ToAssetStatusDTO(status, aid))
	}
}

func getStatusValuesHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		values := app.ledger.StatusValues(app.dbm.DB())

		result := make([]*model.StatusValueDTO, len(values))
		for i, v := range values {
			result[i] = model.ToStatusValueDTO(v)
		}

		return ctx.JSON(result)
	}
}

func getAssetsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		assets := app.dbm.AssetQuery().Get()

		result := make([]fiber.Map, 0, len(assets))

		for _, a := range assets {
			item := fiber.Map{
				"id":    a.ID,
				"name":  a.Name,
				"owner": a.Owner,
			}

			if at := app.dbm.AssetTypeQuery().Id(a.AssetTypeID).One(); at != nil {
				item["type"] = at.Name
			}

			if attachment := app.ledger.CurrentForAsset(app.dbm.DB(), a.ID); attachment != nil {
				item["mission"] = attachment.MissionID
			}

			result = append(result, item)
		}

		return ctx.JSON(result)
	}
}

func getAssetHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		asset := app.dbm.AssetQuery().Id(id).One()
		if asset == nil {
			return ctx.SendStatus(fiber.StatusNotFound)
		}

		item := fiber.Map{
			"id":    asset.ID,
			"name":  asset.Name,
			"owner": asset.Owner,
		}

		if at := app.dbm.AssetTypeQuery().Id(asset.AssetTypeID).One(); at != nil {
			item["type"] = at.Name
		}

		if cmd := app.engine.LastForAsset(app.dbm.DB(), id); cmd != nil {
			item["last_command"] = model.ToCommandDTO(cmd)
		}

		if attachment := app.ledger.CurrentForAsset(app.dbm.DB(), asset.ID); attachment != nil {
			item["mission"] = attachment.MissionID

			if status := app.dbm.StatusQuery().MissionAsset(attachment.ID).One(); status != nil {
				item["status"] = model.ToAssetStatusDTO(status, asset.ID)
			}
		}

		return ctx.JSON(item)
	}
}

func getLastCommandHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		if asset := app.dbm.AssetQuery().Id(id).One(); asset == nil {
			return ctx.SendStatus(fiber.StatusNotFound)
		}

		cmd := app.engine.LastForAsset(app.dbm.DB(), id)
		if cmd == nil {
			return ctx.SendStatus(fiber.StatusNoContent)
		}

		return ctx.JSON(model.ToCommandDTO(cmd))
	}
}

// addPositionHandler is the asset's poll mechanism: it stores the report and
// answers with the command currently in effect, so disconnected units pick
// up directives without a push channel.
func addPositionHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		var body struct {
			Lat any `json:"lat"`
			Lon any `json:"lon"`
		}

		if err := ctx.BodyParser(&body); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		lat, lon, err := model.ParseLatLon(coordString(body.Lat), coordString(body.Lon))
		if err != nil {
			return errStatus(ctx, err)
		}

		if asset := app.dbm.AssetQuery().Id(id).One(); asset == nil {
			return ctx.SendStatus(fiber.StatusNotFound)
		}

		if err := app.dbm.Create(&model.AssetPosition{
			AssetID: id,
			Lat:     lat,
			Lon:     lon,
			At:      time.Now(),
		}); err != nil {
			return err
		}

		cmd := app.engine.LastForAsset(app.dbm.DB(), id)

		return ctx.JSON(fiber.Map{"command": model.ToCommandDTO(cmd)})
	}
}

func issueCommandHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var body struct {
			AssetID   uint   `json:"asset_id"`
			Command   string `json:"command"`
			Reason    string `json:"reason"`
			MissionID *uint  `json:"mission,omitempty"`
			Lat       any    `json:"lat"`
			Lon       any    `json:"lon"`
		}

		if err := ctx.BodyParser(&body); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		if body.MissionID != nil {
			if _, err := app.resolver.Resolve(app.dbm.DB(), *body.MissionID, Username(ctx)); err != nil {
				return errStatus(ctx, err)
			}
		}

		cmd, err := app.engine.Issue(app.dbm.DB(), body.AssetID, Username(ctx),
			body.Command, body.Reason, body.MissionID, coordString(body.Lat), coordString(body.Lon))
		if err != nil {
			return errStatus(ctx, err)
		}

		return ctx.Status(fiber.StatusCreated).JSON(model.ToCommandDTO(cmd))
	}
}

func ackCommandHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		var body struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}

		if err := ctx.BodyParser(&body); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		cmd, err := app.engine.Acknowledge(app.dbm.DB(), id, Username(ctx), body.Type, body.Message)
		if err != nil {
			return errStatus(ctx, err)
		}

		return ctx.JSON(model.ToCommandDTO(cmd))
	}
}

// coordString accepts coordinates as JSON numbers or strings. Validation
// happens in one place either way.
func coordString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
