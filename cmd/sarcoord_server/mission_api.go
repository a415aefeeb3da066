package main

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openrescue/sarcoord/internal/missions"
	"github.com/openrescue/sarcoord/internal/model"
)

func getMissionsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		filter := ctx.Query("filter", missions.FilterAll)

		result := app.missions.ListForUser(app.dbm.DB(), Username(ctx), filter)
		if result == nil {
			result = make([]*model.MissionDTO, 0)
		}

		return ctx.JSON(result)
	}
}

func addMissionHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var body struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}

		if err := ctx.BodyParser(&body); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		m, err := app.missions.Create(app.dbm.DB(), body.Name, body.Description, Username(ctx))
		if err != nil {
			return errStatus(ctx, err)
		}

		return ctx.Status(fiber.StatusCreated).JSON(model.ToMissionDTO(m, true))
	}
}

func getMissionHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		details, err := app.missions.Get(app.dbm.DB(), id, Username(ctx))
		if err != nil {
			return errStatus(ctx, err)
		}

		return ctx.JSON(details)
	}
}

func closeMissionHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		if err := app.missions.Close(app.dbm.DB(), id, Username(ctx)); err != nil {
			return errStatus(ctx, err)
		}

		details, err := app.missions.Get(app.dbm.DB(), id, Username(ctx))
		if err != nil {
			return errStatus(ctx, err)
		}

		return ctx.JSON(details)
	}
}

func getTimelineHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		entries, err := app.missions.Timeline(app.dbm.DB(), id, Username(ctx))
		if err != nil {
			return errStatus(ctx, err)
		}

		result := make([]*model.TimelineEntryDTO, len(entries))
		for i, e := range entries {
			result[i] = model.ToTimelineEntryDTO(e)
		}

		return ctx.JSON(result)
	}
}

func addTimelineEntryHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		var body struct {
			Message string `json:"message"`
			URL     string `json:"url"`
		}

		if err := ctx.BodyParser(&body); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		if err := app.missions.AddTimelineEntry(app.dbm.DB(), id, Username(ctx), body.Message, body.URL); err != nil {
			return errStatus(ctx, err)
		}

		return ctx.SendStatus(fiber.StatusCreated)
	}
}

func addMissionUserHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		var body struct {
			Username string `json:"username"`
		}

		if err := ctx.BodyParser(&body); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		mu, err := app.missions.AddUser(app.dbm.DB(), id, Username(ctx), body.Username)
		if err != nil {
			return errStatus(ctx, err)
		}

		return ctx.Status(fiber.StatusCreated).JSON(model.ToMissionUserDTO(mu))
	}
}

func updateMissionUserHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		var perms model.PermissionsDTO

		if err := ctx.BodyParser(&perms); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		mu, err := app.missions.UpdateUserPermissions(app.dbm.DB(), id, Username(ctx), ctx.Params("username"), perms)
		if err != nil {
			return errStatus(ctx, err)
		}

		return ctx.JSON(model.ToMissionUserDTO(mu))
	}
}

func addMissionOrgHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		var body struct {
			OrganizationID uint                 `json:"organization_id"`
			Permissions    model.PermissionsDTO `json:"permissions"`
		}

		if err := ctx.BodyParser(&body); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		link, err := app.missions.AddOrganization(app.dbm.DB(), id, Username(ctx), body.OrganizationID, body.Permissions)
		if err != nil {
			return errStatus(ctx, err)
		}

		name := ""
		if org := app.dbm.OrgQuery().Id(link.OrganizationID).One(); org != nil {
			name = org.Name
		}

		return ctx.Status(fiber.StatusCreated).JSON(model.ToMissionOrganizationDTO(link, name))
	}
}

func updateMissionOrgHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		oid, err := paramID(ctx, "oid")
		if err != nil {
			return errStatus(ctx, err)
		}

		var perms model.PermissionsDTO

		if err := ctx.BodyParser(&perms); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		link, err := app.missions.UpdateOrganizationPermissions(app.dbm.DB(), id, Username(ctx), oid, perms)
		if err != nil {
			return errStatus(ctx, err)
		}

		name := ""
		if org := app.dbm.OrgQuery().Id(link.OrganizationID).One(); org != nil {
			name = org.Name
		}

		return ctx.JSON(model.ToMissionOrganizationDTO(link, name))
	}
}

func removeMissionOrgHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return errStatus(ctx, err)
		}

		oid, err := paramID(ctx, "oid")
		if err != nil {
			return errStatus(ctx, err)
		}

		if err := app.missions.RemoveOrganization(app.dbm.DB(), id, Username(ctx), oid); err != nil {
			return errStatus(ctx, err)
		}

		return ctx.SendStatus(fiber.StatusNoContent)
	}
}
