package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/founder-copilot/internal/repository"
)

// profileReq is the onboarding questionnaire.  Omitted fields are cleared.
type profileReq struct {
    FullName              *string `json:"full_name"`
    Country               *string `json:"country"`
    Industry              *string `json:"industry"`
    ExperienceLevel       *string `json:"experience_level"`
    PrimaryRole           *string `json:"primary_role"`
    Goals                 *string `json:"goals"`
    Constraints           *string `json:"constraints"`
    RiskTolerance         *string `json:"risk_tolerance"`
    TimeAvailabilityHours *int    `json:"time_availability_hours"`
    Timezone              *string `json:"timezone"`
    ProfileCompleted      bool    `json:"profile_completed"`
}

// GetProfile returns the founder's profile including subscription fields.
func (h *FounderHandler) GetProfile(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    p, err := h.Profiles.GetByUserID(ctx, uid)
    if err != nil {
        return storeError(c, err, "failed to load profile")
    }
    return c.JSON(http.StatusOK, p)
}

// UpdateProfile overwrites the questionnaire answers.  Subscription fields
// cannot be changed here.
func (h *FounderHandler) UpdateProfile(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var req profileReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.TimeAvailabilityHours != nil && (*req.TimeAvailabilityHours < 0 || *req.TimeAvailabilityHours > 168) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "time_availability_hours must be between 0 and 168"})
    }
    tz := optional(req.Timezone)
    if tz != nil {
        if _, err := time.LoadLocation(*tz); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown timezone"})
        }
    }

    ctx, cancel := dbCtx(c)
    defer cancel()

    err = h.Profiles.Update(ctx, uid, repository.ProfileInput{
        FullName:              optional(req.FullName),
        Country:               optional(req.Country),
        Industry:              optional(req.Industry),
        ExperienceLevel:       optional(req.ExperienceLevel),
        PrimaryRole:           optional(req.PrimaryRole),
        Goals:                 optional(req.Goals),
        Constraints:           optional(req.Constraints),
        RiskTolerance:         optional(req.RiskTolerance),
        TimeAvailabilityHours: req.TimeAvailabilityHours,
        Timezone:              tz,
        ProfileCompleted:      req.ProfileCompleted,
    })
    if err != nil {
        return storeError(c, err, "failed to update profile")
    }
    p, err := h.Profiles.GetByUserID(ctx, uid)
    if err != nil {
        return storeError(c, err, "failed to load profile")
    }
    return c.JSON(http.StatusOK, p)
}
