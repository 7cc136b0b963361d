package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/db"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/api"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
	"github.com/Nixie-Tech-LLC/beacon/internal/schedule"
)

type ScheduleController struct {
	store db.ScheduleStore
	loc   *time.Location
	now   func() time.Time
}

func NewScheduleController(store db.ScheduleStore, loc *time.Location, now func() time.Time) *ScheduleController {
	if now == nil {
		now = time.Now
	}
	return &ScheduleController{store: store, loc: loc, now: now}
}

// ScheduleModule mounts the schedule management endpoints. Clock times in
// requests are read in loc.
func ScheduleModule(store db.ScheduleStore, loc *time.Location, now func() time.Time) api.Module {
	ctl := NewScheduleController(store, loc, now)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/schedule", ctl.listItems)
		c.POST("/schedule", ctl.createItem)
		c.POST("/schedule/conflicts", ctl.checkConflicts)
		c.GET("/schedule/:id", ctl.getItem)
		c.PUT("/schedule/:id", ctl.updateItem)
		c.DELETE("/schedule/:id", ctl.deleteItem)
	})
}

func pathID(ctx *gin.Context) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, api.BadRequest("invalid id")
	}
	return id, nil
}

// GET /api/admin/schedule?include_finished=true
func (s *ScheduleController) listItems(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	items, err := s.store.ListScheduleItems(ctx.Request.Context())
	if err != nil {
		return nil, api.FromError(err, "could not list schedule")
	}

	includeFinished, _ := strconv.ParseBool(ctx.Query("include_finished"))
	now := s.now()

	response := make([]packets.ScheduleItemResponse, 0, len(items))
	for _, it := range items {
		r := packets.NewScheduleItemResponse(it, now)
		if r.Status == schedule.StatusFinished && !includeFinished {
			continue
		}
		response = append(response, r)
	}
	return response, nil
}

// GET /api/admin/schedule/:id
func (s *ScheduleController) getItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	it, err := s.store.GetScheduleItem(ctx.Request.Context(), id)
	if err != nil {
		return nil, api.FromError(err, "could not load schedule item")
	}
	return packets.NewScheduleItemResponse(it, s.now()), nil
}

func (s *ScheduleController) bindInput(ctx *gin.Context) (model.ScheduleItemInput, *api.APIError) {
	var request packets.ScheduleItemRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return model.ScheduleItemInput{}, api.BadRequest(err.Error())
	}
	w, err := schedule.ParseWindow(request.Fields(), s.loc)
	if err != nil {
		return model.ScheduleItemInput{}, api.FromError(err, "invalid window")
	}
	in, err := request.Input(w)
	if err != nil {
		return model.ScheduleItemInput{}, api.FromError(err, "invalid schedule item")
	}
	return in, nil
}

// POST /api/admin/schedule
func (s *ScheduleController) createItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	in, apiErr := s.bindInput(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	now := s.now()
	if err := schedule.RejectPast(in.Window(), now); err != nil {
		return nil, api.FromError(err, "")
	}

	it, err := s.store.CreateScheduleItem(ctx.Request.Context(), in)
	if err != nil {
		return nil, api.FromError(err, "could not create schedule item")
	}

	log.Info().Int("id", it.ID).Int("user_id", user.ID).Str("title", it.Title).Msg("schedule item created")
	return packets.NewScheduleItemResponse(it, now), nil
}

// PUT /api/admin/schedule/:id
func (s *ScheduleController) updateItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	in, apiErr := s.bindInput(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	it, err := s.store.UpdateScheduleItem(ctx.Request.Context(), id, in)
	if err != nil {
		return nil, api.FromError(err, "could not update schedule item")
	}

	log.Info().Int("id", it.ID).Int("user_id", user.ID).Msg("schedule item updated")
	return packets.NewScheduleItemResponse(it, s.now()), nil
}

// DELETE /api/admin/schedule/:id
func (s *ScheduleController) deleteItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := s.store.DeleteScheduleItem(ctx.Request.Context(), id); err != nil {
		return nil, api.FromError(err, "could not delete schedule item")
	}

	log.Info().Int("id", id).Int("user_id", user.ID).Msg("schedule item deleted")
	return gin.H{"message": "deleted"}, nil
}

// POST /api/admin/schedule/conflicts
//
// Reports whether a window would be rejected without writing anything. The
// write path checks again under its own lock, so this is advisory only.
func (s *ScheduleController) checkConflicts(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.ConflictCheckRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	w, err := schedule.ParseWindow(request.Fields(), s.loc)
	if err != nil {
		return nil, api.FromError(err, "invalid window")
	}
	if !w.End.After(w.Start) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "end_time: must be after start", Field: "end_time"}
	}

	items, err := s.store.ListScheduleItems(ctx.Request.Context())
	if err != nil {
		return nil, api.FromError(err, "could not check conflicts")
	}

	clash := schedule.Conflicting(w, items, request.ExcludeID)
	if clash == nil {
		return packets.ConflictCheckResponse{}, nil
	}
	with := packets.NewScheduleItemResponse(*clash, s.now())
	return packets.ConflictCheckResponse{
		Conflict: true,
		Message:  (&model.ConflictError{Candidate: w, With: *clash}).Error(),
		With:     &with,
	}, nil
}
