package handlers

import (
	"route-assignment-service/internal/api/dto"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/services"
)

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toViolations(vs []domain.Violation) []dto.ViolationResponse {
	out := make([]dto.ViolationResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, dto.ViolationResponse{
			RouteCode:    v.RouteCode,
			VIN:          v.VIN,
			Kind:         string(v.Kind),
			Detail:       v.Detail,
			Authorized:   v.Authorized,
			Reason:       v.Reason,
			AuthorizedAt: v.AuthorizedAt,
		})
	}
	return out
}

func toAssignment(a domain.Assignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		RouteCode:            a.RouteCode,
		VIN:                  a.VIN,
		VehicleName:          a.VehicleName,
		RequestedServiceType: a.RequestedServiceType,
		AssignedServiceType:  a.AssignedServiceType,
		DriverName:           a.DriverName,
		Status:               string(a.Status),
		Violations:           toViolations(a.Violations),
		Warnings:             nonNil(a.Warnings),
		FallbackUsed:         a.FallbackUsed,
		AffinityUsed:         a.AffinityUsed,
	}
}

func toAssignments(as []domain.Assignment) []dto.AssignmentResponse {
	out := make([]dto.AssignmentResponse, 0, len(as))
	for _, a := range as {
		out = append(out, toAssignment(a))
	}
	return out
}

func toAssignResponse(res services.AssignResult) dto.AssignResponse {
	failed := make([]dto.FailedRouteResponse, 0, len(res.Failed))
	for _, f := range res.Failed {
		options := make([]dto.VehicleOptionResponse, 0, len(f.EligibleVehicles))
		for _, o := range f.EligibleVehicles {
			options = append(options, dto.VehicleOptionResponse{
				VIN:         o.VIN,
				Name:        o.Name,
				ServiceType: o.ServiceType,
				Electric:    o.Electric,
			})
		}
		failed = append(failed, dto.FailedRouteResponse{
			RouteCode:        f.RouteCode,
			ServiceType:      f.ServiceType,
			Status:           string(f.Status),
			Reason:           f.Reason,
			Violations:       toViolations(f.Violations),
			EligibleVehicles: options,
		})
	}

	return dto.AssignResponse{
		Assignments:   toAssignments(res.Assignments),
		AssignedCount: res.AssignedCount,
		TotalRoutes:   res.TotalRoutes,
		SuccessRate:   res.SuccessRate,
		FallbacksUsed: res.FallbacksUsed,
		FailedRoutes:  failed,
	}
}

func toIngest(res services.IngestResult) dto.IngestResponse {
	return dto.IngestResponse{
		Source:        string(res.Source),
		RecordsParsed: res.RecordsParsed,
		Skipped:       res.Skipped,
		Errors:        nonNil(res.Errors),
		Warnings:      nonNil(res.Warnings),
	}
}

func toStatus(st services.Status) dto.StatusResponse {
	sources := make(map[string]dto.SourceStatusResponse, len(st.Sources))
	for s, ss := range st.Sources {
		sources[string(s)] = dto.SourceStatusResponse{
			Uploaded:  ss.Uploaded,
			Records:   ss.Records,
			Skipped:   ss.Skipped,
			Errors:    nonNil(ss.Errors),
			Warnings:  nonNil(ss.Warnings),
			UpdatedAt: timePtr(ss.UpdatedAt),
		}
	}

	return dto.StatusResponse{
		CycleID:            st.CycleID,
		Sources:            sources,
		ValidationErrors:   nonNil(st.ValidationErrors),
		ValidationWarnings: nonNil(st.ValidationWarnings),
		LastUpdated:        timePtr(st.LastUpdated),
		ReadyToAssign:      st.ReadyToAssign,
	}
}
