package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi31"

	"github.com/NativeSquare/Cadence-sub000/internal/handler/health"
	"github.com/NativeSquare/Cadence-sub000/internal/session"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type interviewPath struct {
	ID string `path:"id" description:"Interview ID."`
}

type listInterviewsQuery struct {
	Status string `query:"status" enum:"active,complete" description:"Filter by status."`
}

type action struct {
	path        string
	summary     string
	description string
	req         any
}

func newOpenAPISpec() *openapi31.Spec {
	r := openapi31.NewReflector()
	r.Spec.Info.Title = "Cadence Onboarding API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Adaptive onboarding interview for the Cadence running coach.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(health.Report{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Report{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/devices
	getDevices, _ := r.NewOperationContext(http.MethodGet, "/api/devices")
	getDevices.SetSummary("List device providers")
	getDevices.AddRespStructure(ProvidersResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getDevices)

	// GET /api/interviews
	listInterviews, _ := r.NewOperationContext(http.MethodGet, "/api/interviews")
	listInterviews.SetSummary("List interviews")
	listInterviews.SetDescription("Returns stored interviews, most recently updated first.")
	listInterviews.AddReqStructure(listInterviewsQuery{})
	listInterviews.AddRespStructure(InterviewListResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	listInterviews.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(listInterviews)

	// POST /api/interviews
	postInterview, _ := r.NewOperationContext(http.MethodPost, "/api/interviews")
	postInterview.SetSummary("Start interview")
	postInterview.SetDescription("Creates an interview and starts its live session at the welcome scene.")
	postInterview.AddReqStructure(CreateInterviewRequest{})
	postInterview.AddRespStructure(session.Snapshot{}, openapi.WithHTTPStatus(http.StatusCreated))
	postInterview.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postInterview)

	// GET /api/interviews/{id}
	getInterview, _ := r.NewOperationContext(http.MethodGet, "/api/interviews/{id}")
	getInterview.SetSummary("Get interview snapshot")
	getInterview.SetDescription("Returns the live session snapshot.")
	getInterview.AddReqStructure(interviewPath{})
	getInterview.AddRespStructure(session.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	getInterview.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getInterview)

	// DELETE /api/interviews/{id}
	deleteInterview, _ := r.NewOperationContext(http.MethodDelete, "/api/interviews/{id}")
	deleteInterview.SetSummary("Release interview session")
	deleteInterview.SetDescription("Stops the live session. The stored interview can be resumed later.")
	deleteInterview.AddReqStructure(interviewPath{})
	deleteInterview.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteInterview.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteInterview)

	// GET /api/interviews/{id}/record
	getRecord, _ := r.NewOperationContext(http.MethodGet, "/api/interviews/{id}/record")
	getRecord.SetSummary("Get stored interview")
	getRecord.SetDescription("Returns the persisted interview with its device connections.")
	getRecord.AddReqStructure(interviewPath{})
	getRecord.AddRespStructure(InterviewRecordResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getRecord.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getRecord)

	// POST /api/interviews/{id}/resume
	postResume, _ := r.NewOperationContext(http.MethodPost, "/api/interviews/{id}/resume")
	postResume.SetSummary("Resume interview")
	postResume.SetDescription("Restarts the session from its last checkpoint if it is not live.")
	postResume.AddReqStructure(interviewPath{})
	postResume.AddRespStructure(session.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	postResume.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postResume.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postResume)

	for _, a := range []action{
		{"/name", "Confirm name", "Confirms the runner's name on the welcome scene.", NameRequest{}},
		{"/select", "Select option", "Taps an option. Single-select answers advance after a short delay.", SelectRequest{}},
		{"/answer", "Submit answer", "Submits typed input for the current question.", AnswerRequest{}},
		{"/confirm", "Confirm selection", "Records the multi-select choice.", nil},
		{"/skip", "Skip question", "Skips an optional question.", nil},
		{"/back", "Go back", "Returns to the previous question.", nil},
		{"/reveal/finish", "Finish reveal", "Shows the rest of the current text at once.", nil},
		{"/connect", "Connect device", "Starts a wearable connection.", ConnectRequest{}},
		{"/connect/skip", "Skip device", "Continues without a wearable.", nil},
		{"/complete", "Complete interview", "Runs the handoff action after the closing text.", nil},
	} {
		op, _ := r.NewOperationContext(http.MethodPost, "/api/interviews/{id}"+a.path)
		op.SetSummary(a.summary)
		op.SetDescription(a.description)
		op.AddReqStructure(interviewPath{})
		if a.req != nil {
			op.AddReqStructure(a.req)
		}
		op.AddRespStructure(session.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
		op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
		op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
		op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
		_ = r.AddOperation(op)
	}

	// GET /api/interviews/{id}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/interviews/{id}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of snapshots (event: state) and text reveal updates (event: reveal).")
	getEvents.AddReqStructure(interviewPath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/interviews/{id}
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws/interviews/{id}")
	getWS.SetSummary("Reveal websocket")
	getWS.SetDescription("Upgrades to a WebSocket that streams text reveal updates as JSON events.")
	getWS.AddReqStructure(interviewPath{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
