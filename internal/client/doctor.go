package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jwalitptl/eyecare-portal/pkg/errors"
)

const endpointDoctors = "/nearest_eye_specialists"

// GetDoctorsNearMe lists eye specialists near loc, or near the fallback
// location when loc is nil. Results keep the server's order.
func (c *Client) GetDoctorsNearMe(ctx context.Context, loc *Coordinates) ([]Doctor, error) {
	target := c.fallback
	if loc != nil {
		target = *loc
	}
	if err := c.validator.Validate(target); err != nil {
		return nil, c.fail("doctors", errors.NewValidation(err.Error(), err))
	}

	query := url.Values{}
	query.Set("lat", formatCoordinate(target.Latitude))
	query.Set("lng", formatCoordinate(target.Longitude))
	req, err := c.newRequest(ctx, http.MethodGet, endpointDoctors, query, nil, "")
	if err != nil {
		return nil, c.fail("doctors", err)
	}
	body, err := c.do(req, endpointDoctors)
	if err != nil {
		return nil, c.fail("doctors", err)
	}

	var wire []doctorWire
	if err := c.decode(endpointDoctors, body, &wire); err != nil {
		return nil, c.fail("doctors", err)
	}

	doctors := make([]Doctor, 0, len(wire))
	for _, w := range wire {
		doctors = append(doctors, Doctor{
			Name:           w.Name,
			Specialization: w.Specialization,
			Hospital:       w.HospitalName,
			Address:        w.Address,
			Latitude:       w.Lat,
			Longitude:      w.Lng,
			Experience:     w.Experience,
			Contact:        w.Contact,
			Email:          w.Email,
			DistanceKm:     w.DistanceKm,
		})
	}
	return doctors, nil
}
