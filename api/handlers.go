package api

import (
	"fleet-allocation/allocation"
	"fleet-allocation/capacity"
	"fleet-allocation/fleet"
	"fleet-allocation/parser"

	"github.com/gofiber/fiber/v2"
)

// Handler serves the allocation endpoints. Fleet resolves availability for
// requests that do not carry their own fleet counts.
type Handler struct {
	Fleet fleet.Source
}

func NewHandler(src fleet.Source) *Handler {
	return &Handler{Fleet: src}
}

// EstimateRequest asks for the capacity of one transporter on one order.
type EstimateRequest struct {
	Order   parser.OrderInput   `json:"order"`
	Site    *parser.SiteInput   `json:"site,omitempty"`
	Company parser.CompanyInput `json:"company"`
	Weight  float64             `json:"weight,omitempty"`
}

type EstimateResponse struct {
	capacity.Estimate
	Weight        float64 `json:"weight,omitempty"`
	MinimumTrucks int     `json:"minimum_trucks"`
}

type ValidateResponse struct {
	SessionID string             `json:"session_id"`
	State     allocation.State   `json:"state"`
	Accepted  bool               `json:"accepted"`
	Report    *allocation.Report `json:"report"`
}

func HealthCheckHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "UP",
		"service": "Fleet Allocation API",
	})
}

// ValidateHandler validates a plan document. Fleet counts in the body take
// precedence over the configured source.
func (h *Handler) ValidateHandler(c *fiber.Ctx) error {
	var request parser.PlanInput
	if err := c.BodyParser(&request); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid JSON format")
	}
	if err := request.Validate(); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	plan, available, err := request.ToDomain()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	session := allocation.SessionFromPlan(plan)
	if available != nil {
		session = session.ValidateWith(available)
	} else {
		session, err = session.Validate(c.UserContext(), h.Fleet)
		if err != nil {
			return errorResponse(c, fiber.StatusBadGateway, err.Error())
		}
	}

	return c.Status(fiber.StatusOK).JSON(ValidateResponse{
		SessionID: session.ID().String(),
		State:     session.State(),
		Accepted:  session.Report().Accepted(),
		Report:    session.Report(),
	})
}

// EstimateHandler runs the capacity pipeline for one transporter.
func (h *Handler) EstimateHandler(c *fiber.Ctx) error {
	var request EstimateRequest
	if err := c.BodyParser(&request); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid JSON format")
	}
	if request.Weight < 0 {
		return errorResponse(c, fiber.StatusBadRequest, "weight must be >= 0")
	}

	doc := parser.PlanInput{
		Order:     request.Order,
		Site:      request.Site,
		Companies: []parser.CompanyInput{request.Company},
	}
	if err := doc.Validate(); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	plan, _, err := doc.ToDomain()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	est := capacity.ForCompany(plan.Order, plan.Site, plan.Companies[request.Company.ID])
	return c.Status(fiber.StatusOK).JSON(EstimateResponse{
		Estimate:      est,
		Weight:        request.Weight,
		MinimumTrucks: est.MinimumTrucks(request.Weight),
	})
}
