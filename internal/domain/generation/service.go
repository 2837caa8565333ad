// Package generation implements the generation coordinator: the per-request
// state machine that ties authentication, validation, code selection,
// prompt construction, the LLM call, and audit logging into the three
// document-generation operations the HTTP surface exposes.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Markolissimo/treatment-summary/internal/domain/audit"
	"github.com/Markolissimo/treatment-summary/internal/domain/confirmation"
	"github.com/Markolissimo/treatment-summary/internal/domain/doctypes"
	"github.com/Markolissimo/treatment-summary/internal/domain/selector"
	"github.com/Markolissimo/treatment-summary/internal/platform/llm"
	"github.com/Markolissimo/treatment-summary/internal/platform/prompt"
	"github.com/Markolissimo/treatment-summary/internal/platform/schemaregistry"
)

var treatmentSummarySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":   map[string]any{"type": "string"},
		"summary": map[string]any{"type": "string"},
	},
	"required":             []string{"title", "summary"},
	"additionalProperties": false,
}

var insuranceSummarySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"insurance_summary": map[string]any{"type": "string"},
		"disclaimer":        map[string]any{"type": "string"},
	},
	"required":             []string{"insurance_summary", "disclaimer"},
	"additionalProperties": false,
}

// Seeds holds the per-document-kind default seed used for a fresh
// (non-regeneration) generation.
type Seeds struct {
	TreatmentSummary int
	InsuranceSummary int
	ProgressNotes    int
}

// RequestMeta carries HTTP-layer request metadata through to the audit
// record for operational traceability. Neither field participates in any
// invariant or response payload.
type RequestMeta struct {
	RequestIP string
	RequestID string
}

// Service is the generation coordinator. It owns no persistence itself;
// every side effect runs through the injected selector, LLM client, and
// audit service.
type Service struct {
	selector   *selector.Selector
	llmClient  *llm.Client
	auditSvc   *audit.Service
	confirmSvc *confirmation.Service
	model      string
	seeds      Seeds
}

func NewService(sel *selector.Selector, llmClient *llm.Client, auditSvc *audit.Service, confirmSvc *confirmation.Service, model string, seeds Seeds) *Service {
	return &Service{
		selector:   sel,
		llmClient:  llmClient,
		auditSvc:   auditSvc,
		confirmSvc: confirmSvc,
		model:      model,
		seeds:      seeds,
	}
}

// GenerateTreatmentSummary runs the full treatment-summary pipeline:
// validate → resolve seed → select code → build prompt → call the LLM →
// audit → respond. A failure at any stage after validation still produces
// an audit record with status=error before the error is returned.
func (s *Service) GenerateTreatmentSummary(ctx context.Context, userID string, req TreatmentSummaryRequest, meta RequestMeta) (*TreatmentSummaryResponse, error) {
	req.Defaults()
	if errs := req.Validate(); len(errs) > 0 {
		return nil, errs
	}

	const documentKind = string(doctypes.DocumentTreatmentSummary)
	documentVersion := schemaregistry.VersionFor(documentKind)

	var previousUUID *uuid.UUID
	if req.PreviousVersionUUID != "" {
		parsed, _ := uuid.Parse(req.PreviousVersionUUID)
		previousUUID = &parsed
	}

	seed, err := s.auditSvc.ResolveSeed(ctx, documentKind, userID, req.IsRegeneration, previousUUID, s.seeds.TreatmentSummary)
	if err != nil {
		s.auditFailure(ctx, userID, documentKind, documentVersion, requestToMap(req), seed, req.IsRegeneration, previousUUID, meta, err)
		return nil, err
	}

	selection, err := s.selector.Select(ctx, selector.Input{
		Tier:       req.Tier,
		PatientAge: req.PatientAge,
	})
	if err != nil {
		s.auditFailure(ctx, userID, documentKind, documentVersion, requestToMap(req), seed, req.IsRegeneration, previousUUID, meta, err)
		return nil, err
	}

	userPrompt := prompt.BuildTreatmentSummaryUserPrompt(prompt.TreatmentSummaryInput{
		PatientName:        req.PatientName,
		PracticeName:       req.PracticeName,
		PatientAge:         req.PatientAge,
		TreatmentType:      doctypes.TreatmentType(req.TreatmentType),
		AreaTreated:        doctypes.AreaTreated(req.AreaTreated),
		DurationRange:      req.DurationRange,
		CaseDifficulty:     doctypes.CaseDifficulty(req.CaseDifficulty),
		MonitoringApproach: doctypes.MonitoringApproach(req.MonitoringApproach),
		Attachments:        doctypes.Attachments(req.Attachments),
		WhiteningIncluded:  req.WhiteningIncluded,
		DentistNote:        req.DentistNote,
		Audience:           doctypes.Audience(req.Audience),
		Tone:               doctypes.Tone(req.Tone),
	})

	result, err := s.llmClient.Generate(ctx, llm.GenerateRequest{
		SystemPrompt: prompt.TreatmentSummarySystemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.7,
		MaxTokens:    2000,
		Seed:         seed,
		SchemaName:   "treatment_summary",
		Schema:       treatmentSummarySchema,
	})
	if err != nil {
		wrapped := wrapLLMError(ctx, err)
		s.auditFailure(ctx, userID, documentKind, documentVersion, requestToMap(req), seed, req.IsRegeneration, previousUUID, meta, wrapped)
		return nil, wrapped
	}

	var doc TreatmentSummaryDocument
	if err := json.Unmarshal([]byte(result.Content), &doc); err != nil || doc.Title == "" || doc.Summary == "" {
		wrapped := &LLMCallFailedError{Reason: fmt.Errorf("response did not conform to the treatment summary schema")}
		s.auditFailure(ctx, userID, documentKind, documentVersion, requestToMap(req), seed, req.IsRegeneration, previousUUID, meta, wrapped)
		return nil, wrapped
	}

	addOns := make([]AddOn, 0, len(selection.AddOns))
	for _, a := range selection.AddOns {
		addOns = append(addOns, AddOn{Code: a.Code, Description: a.Description})
	}

	tokens := result.TokensUsed
	genTime := result.GenerationTimeMS
	rec, err := s.auditSvc.Append(ctx, audit.AppendInput{
		UserID:              userID,
		DocumentKind:        documentKind,
		DocumentVersion:     documentVersion,
		InputData:           requestToMap(req),
		OutputData:          map[string]any{"title": doc.Title, "summary": doc.Summary},
		ModelUsed:           s.model,
		TokensUsed:          &tokens,
		GenerationTimeMS:    &genTime,
		Status:              audit.StatusSuccess,
		Seed:                seed,
		IsRegenerated:       req.IsRegeneration,
		PreviousVersionUUID: previousUUID,
		RequestIP:           meta.RequestIP,
		RequestID:           meta.RequestID,
	})
	if err != nil {
		return nil, fmt.Errorf("persist audit record: %w", err)
	}

	return &TreatmentSummaryResponse{
		Success:  true,
		Document: doc,
		CDTCodes: CDTCodes{
			PrimaryCode:        selection.PrimaryCode,
			PrimaryDescription: selection.PrimaryDescription,
			SuggestedAddOns:    addOns,
			Notes:              selection.Notes,
		},
		Metadata: TreatmentSummaryMetadata{
			Metadata: Metadata{
				TokensUsed:       result.TokensUsed,
				GenerationTimeMS: result.GenerationTimeMS,
				Seed:             seed,
				DocumentVersion:  documentVersion,
			},
			Audience: req.Audience,
			Tone:     req.Tone,
		},
		UUID:                rec.ID,
		IsRegenerated:       req.IsRegeneration,
		PreviousVersionUUID: previousUUID,
		Seed:                seed,
	}, nil
}

// GenerateInsuranceSummary runs the insurance-summary pipeline, the same
// shape as GenerateTreatmentSummary but with diagnostic-asset add-ons and a
// fixed disclaimer: the document's Disclaimer is always set to
// prompt.DefaultInsuranceDisclaimer, whatever the LLM output carried.
func (s *Service) GenerateInsuranceSummary(ctx context.Context, userID string, req InsuranceSummaryRequest, meta RequestMeta) (*InsuranceSummaryResponse, error) {
	req.Defaults()
	if errs := req.Validate(); len(errs) > 0 {
		return nil, errs
	}

	const documentKind = string(doctypes.DocumentInsuranceSummary)
	documentVersion := schemaregistry.VersionFor(documentKind)

	var previousUUID *uuid.UUID
	if req.PreviousVersionUUID != "" {
		parsed, _ := uuid.Parse(req.PreviousVersionUUID)
		previousUUID = &parsed
	}

	seed, err := s.auditSvc.ResolveSeed(ctx, documentKind, userID, req.IsRegeneration, previousUUID, s.seeds.InsuranceSummary)
	if err != nil {
		s.auditFailure(ctx, userID, documentKind, documentVersion, insuranceRequestToMap(req), seed, req.IsRegeneration, previousUUID, meta, err)
		return nil, err
	}

	selection, err := s.selector.Select(ctx, selector.Input{
		Tier:     req.Tier,
		AgeGroup: req.AgeGroup,
		DiagnosticAssets: &selector.DiagnosticAssets{
			IntraoralPhotos: req.DiagnosticAssets.IntraoralPhotos,
			PanoramicXray:   req.DiagnosticAssets.PanoramicXray,
			FMX:             req.DiagnosticAssets.FMX,
			DiagnosticCasts: req.DiagnosticAssets.DiagnosticCasts,
		},
		RetainersIncluded: req.RetainersIncluded,
	})
	if err != nil {
		s.auditFailure(ctx, userID, documentKind, documentVersion, insuranceRequestToMap(req), seed, req.IsRegeneration, previousUUID, meta, err)
		return nil, err
	}

	userPrompt := prompt.BuildInsuranceSummaryUserPrompt(prompt.InsuranceSummaryInput{
		Tier:               doctypes.InsuranceTier(req.Tier),
		Arches:             doctypes.Arches(req.Arches),
		AgeGroup:           doctypes.AgeGroup(req.AgeGroup),
		RetainersIncluded:  req.RetainersIncluded,
		MonitoringApproach: doctypes.MonitoringApproach(req.MonitoringApproach),
		IntraoralPhotos:    req.DiagnosticAssets.IntraoralPhotos,
		PanoramicXray:      req.DiagnosticAssets.PanoramicXray,
		FMX:                req.DiagnosticAssets.FMX,
		DiagnosticCasts:    req.DiagnosticAssets.DiagnosticCasts,
		Notes:              req.Notes,
	})

	result, err := s.llmClient.Generate(ctx, llm.GenerateRequest{
		SystemPrompt: prompt.InsuranceSummarySystemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.5,
		MaxTokens:    1500,
		Seed:         seed,
		SchemaName:   "insurance_summary",
		Schema:       insuranceSummarySchema,
	})
	if err != nil {
		wrapped := wrapLLMError(ctx, err)
		s.auditFailure(ctx, userID, documentKind, documentVersion, insuranceRequestToMap(req), seed, req.IsRegeneration, previousUUID, meta, wrapped)
		return nil, wrapped
	}

	var doc InsuranceSummaryDocument
	if err := json.Unmarshal([]byte(result.Content), &doc); err != nil || doc.InsuranceSummary == "" {
		wrapped := &LLMCallFailedError{Reason: fmt.Errorf("response did not conform to the insurance summary schema")}
		s.auditFailure(ctx, userID, documentKind, documentVersion, insuranceRequestToMap(req), seed, req.IsRegeneration, previousUUID, meta, wrapped)
		return nil, wrapped
	}
	// The disclaimer is never trusted from the model output.
	doc.Disclaimer = prompt.DefaultInsuranceDisclaimer

	codes := []InsuranceCDTCode{{Code: selection.PrimaryCode, Description: selection.PrimaryDescription, Category: "orthodontic"}}
	for _, a := range selection.AddOns {
		codes = append(codes, InsuranceCDTCode{Code: a.Code, Description: a.Description, Category: "diagnostic"})
	}

	tokens := result.TokensUsed
	genTime := result.GenerationTimeMS
	rec, err := s.auditSvc.Append(ctx, audit.AppendInput{
		UserID:              userID,
		DocumentKind:        documentKind,
		DocumentVersion:     documentVersion,
		InputData:           insuranceRequestToMap(req),
		OutputData:          map[string]any{"insurance_summary": doc.InsuranceSummary, "disclaimer": doc.Disclaimer},
		ModelUsed:           s.model,
		TokensUsed:          &tokens,
		GenerationTimeMS:    &genTime,
		Status:              audit.StatusSuccess,
		Seed:                seed,
		IsRegenerated:       req.IsRegeneration,
		PreviousVersionUUID: previousUUID,
		RequestIP:           meta.RequestIP,
		RequestID:           meta.RequestID,
	})
	if err != nil {
		return nil, fmt.Errorf("persist audit record: %w", err)
	}

	return &InsuranceSummaryResponse{
		Success:  true,
		Document: doc,
		CDTCodes: codes,
		Metadata: Metadata{
			TokensUsed:       result.TokensUsed,
			GenerationTimeMS: result.GenerationTimeMS,
			Seed:             seed,
			DocumentVersion:  documentVersion,
		},
		UUID:                rec.ID,
		IsRegenerated:       req.IsRegeneration,
		PreviousVersionUUID: previousUUID,
		Seed:                seed,
	}, nil
}

// ConfirmInput is the decoded POST /api/v1/documents/:id/confirm body.
type ConfirmInput struct {
	ConfirmedPayload map[string]any
	Notes            string
}

type ConfirmResult struct {
	ConfirmationID  uuid.UUID
	GenerationID    uuid.UUID
	UserID          string
	DocumentKind    string
	DocumentVersion string
	ConfirmedAt     time.Time
}

func (s *Service) Confirm(ctx context.Context, generationID uuid.UUID, userID string, in ConfirmInput) (*ConfirmResult, error) {
	rec, err := s.confirmSvc.Confirm(ctx, generationID, userID, in.ConfirmedPayload, in.Notes)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{
		ConfirmationID:  rec.ID,
		GenerationID:    rec.GenerationID,
		UserID:          rec.UserID,
		DocumentKind:    rec.DocumentKind,
		DocumentVersion: rec.DocumentVersion,
		ConfirmedAt:     rec.ConfirmedAt,
	}, nil
}

// auditFailure writes a status=error audit record on the failure path; its
// own error is swallowed since the original failure already determines the
// response, and the error-path audit write is best-effort in the same way
// the write contract treats it as non-blocking.
func (s *Service) auditFailure(ctx context.Context, userID, documentKind, documentVersion string, input map[string]any, seed int, isRegeneration bool, previousUUID *uuid.UUID, meta RequestMeta, cause error) {
	_, _ = s.auditSvc.Append(context.WithoutCancel(ctx), audit.AppendInput{
		UserID:              userID,
		DocumentKind:        documentKind,
		DocumentVersion:     documentVersion,
		InputData:           input,
		OutputData:          map[string]any{},
		ModelUsed:           s.model,
		Status:              audit.StatusError,
		ErrorMessage:        cause.Error(),
		Seed:                seed,
		IsRegenerated:       isRegeneration,
		PreviousVersionUUID: previousUUID,
		RequestIP:           meta.RequestIP,
		RequestID:           meta.RequestID,
	})
}

func wrapLLMError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ErrLLMTimeout
	}
	return &LLMCallFailedError{Reason: err}
}

func requestToMap(r TreatmentSummaryRequest) map[string]any {
	m := map[string]any{
		"tier":                r.Tier,
		"treatment_type":      r.TreatmentType,
		"area_treated":        r.AreaTreated,
		"duration_range":      r.DurationRange,
		"case_difficulty":     r.CaseDifficulty,
		"monitoring_approach": r.MonitoringApproach,
		"attachments":         r.Attachments,
		"whitening_included":  r.WhiteningIncluded,
		"audience":            r.Audience,
		"tone":                r.Tone,
	}
	if r.PatientAge != nil {
		m["patient_age"] = *r.PatientAge
	}
	if r.PatientName != "" {
		m["patient_name"] = r.PatientName
	}
	if r.PracticeName != "" {
		m["practice_name"] = r.PracticeName
	}
	if r.DentistNote != "" {
		m["dentist_note"] = r.DentistNote
	}
	return m
}

func insuranceRequestToMap(r InsuranceSummaryRequest) map[string]any {
	m := map[string]any{
		"tier":                r.Tier,
		"arches":              r.Arches,
		"age_group":           r.AgeGroup,
		"retainers_included":  r.RetainersIncluded,
		"monitoring_approach": r.MonitoringApproach,
		"diagnostic_assets": map[string]any{
			"intraoral_photos": r.DiagnosticAssets.IntraoralPhotos,
			"panoramic_xray":   r.DiagnosticAssets.PanoramicXray,
			"fmx":              r.DiagnosticAssets.FMX,
			"diagnostic_casts": r.DiagnosticAssets.DiagnosticCasts,
		},
	}
	if r.Notes != "" {
		m["notes"] = r.Notes
	}
	return m
}
