package apiv1

import (
	"crypto/subtle"
	"io"
	"net/http"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/infra/logging"
	"emby-cdk-manager/internal/infra/metrics"
	"emby-cdk-manager/internal/infra/sched"
	"emby-cdk-manager/internal/infra/scheduler"
	"emby-cdk-manager/internal/usecase"
)

func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Status{Status: "ok", Timestamp: s.now().UTC()})
}

// ===== auth =====

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.allow(r, "login", s.s.LoginRateLimit, s.s.LoginRateWindow) {
		s.fail(w, r, domain.ErrRateLimited)
		return
	}
	res, err := s.d.Auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tag := ""
	if res.Identity != nil {
		tag = res.Identity.PrimaryImageTag
	}
	s.d.Sessions.SetCookie(w, res.Session.Token, res.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     res.Session.Token,
		ExpiresAt: res.Session.ExpiresAt,
		User:      s.userView(res.Session.Account, tag),
	})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	s.d.Sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var body RegisterJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.allow(r, "register", s.s.RegisterRateLimit, s.s.RegisterRateWindow) {
		s.fail(w, r, domain.ErrRateLimited)
		return
	}
	res, err := s.d.Redemption.Redeem(r.Context(), usecase.RedeemRequest{
		Code:     body.Cdk,
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	msg := "redeem.activated"
	if res.IsRenewal {
		msg = "redeem.renewed"
	}
	s.d.Sessions.SetCookie(w, res.Session.Token, res.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, RegisterResponse{
		Success:         true,
		Message:         s.tr(r).T(msg),
		Token:           res.Session.Token,
		ExpiresAt:       res.Session.ExpiresAt,
		User:            s.userView(res.Session.Account, ""),
		IsRenewal:       res.IsRenewal,
		ExpiryDate:      res.ExpiryDate,
		MemberValidDays: res.MemberValidDays,
	})
}

func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	acc, err := s.d.Auth.Me(r.Context(), claimsFrom(r.Context()).AccountID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.userView(acc, ""))
}

// ===== codes =====

func (s *Server) ListCDKs(w http.ResponseWriter, r *http.Request, params ListCDKsParams) {
	cdks, err := s.d.CDKs.List(r.Context(), deref(params.Offset), deref(params.Limit))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := CDKList{Items: make([]CDK, 0, len(cdks))}
	for _, c := range cdks {
		out.Items = append(out.Items, cdkView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GenerateCDKs(w http.ResponseWriter, r *http.Request) {
	var body GenerateCDKsJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	req := usecase.GenerateRequest{
		Count:           body.Count,
		CDKValidDays:    body.CdkValidDays,
		MemberValidDays: body.MemberValidDays,
		CreatedBy:       claimsFrom(r.Context()).AccountID,
	}
	if body.TemplateId != nil {
		req.TemplateID = *body.TemplateId
	}
	cdks, err := s.d.CDKs.Generate(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := CDKList{Items: make([]CDK, 0, len(cdks))}
	for _, c := range cdks {
		out.Items = append(out.Items, cdkView(c))
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) DeleteCDK(w http.ResponseWriter, r *http.Request, id IdPath) {
	if err := s.d.CDKs.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== accounts =====

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request, params ListUsersParams) {
	accs, err := s.d.Accounts.List(r.Context(), deref(params.Offset), deref(params.Limit))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := UserList{Items: make([]User, 0, len(accs))}
	for _, a := range accs {
		out.Items = append(out.Items, s.userView(a, ""))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request, id IdPath) {
	var body UpdateUserJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	acc, err := s.d.Accounts.SetActive(r.Context(), id, body.IsActive)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.userView(acc, ""))
}

// ===== templates =====

func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ts, err := s.d.Templates.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := TemplateList{Items: make([]Template, 0, len(ts))}
	for _, t := range ts {
		out.Items = append(out.Items, templateView(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var body CreateTemplateJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	in, err := templateInput(body, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.d.Templates.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, templateView(t))
}

func (s *Server) GetTemplate(w http.ResponseWriter, r *http.Request, id IdPath) {
	t, err := s.d.Templates.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templateView(t))
}

func (s *Server) UpdateTemplate(w http.ResponseWriter, r *http.Request, id IdPath) {
	var body UpdateTemplateJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	cur, err := s.d.Templates.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	in, err := templateInput(body, cur)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.d.Templates.Update(r.Context(), id, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templateView(t))
}

func (s *Server) DeleteTemplate(w http.ResponseWriter, r *http.Request, id IdPath) {
	if err := s.d.Templates.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== system config =====

func (s *Server) ListConfigs(w http.ResponseWriter, r *http.Request) {
	cs, err := s.d.Configs.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := SystemConfigList{Items: make([]SystemConfig, 0, len(cs))}
	for _, c := range cs {
		out.Items = append(out.Items, configView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) UpsertConfig(w http.ResponseWriter, r *http.Request) {
	var body UpsertConfigJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.d.Configs.Upsert(r.Context(), body.Key, body.Value, body.Description)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configView(c))
}

// ListLibraries feeds the login background library picker.
func (s *Server) ListLibraries(w http.ResponseWriter, r *http.Request) {
	libs, err := s.d.Browse.Libraries(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := LibraryList{Items: make([]Library, 0, len(libs))}
	for _, l := range libs {
		out.Items = append(out.Items, libraryView(l))
	}
	writeJSON(w, http.StatusOK, out)
}

// ===== media browsing =====

func (s *Server) GetShelf(w http.ResponseWriter, r *http.Request, shelf ShelfPath) {
	items, err := s.d.Browse.Shelf(r.Context(), claimsFrom(r.Context()).AccountID, model.Shelf(shelf))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := BrowseItemList{Items: make([]BrowseItem, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, browseItemView(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) ListViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.d.Browse.Views(r.Context(), claimsFrom(r.Context()).AccountID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := ViewList{ServerId: views.ServerID, Items: make([]LibraryView, 0, len(views.Views))}
	for _, v := range views.Views {
		out.Items = append(out.Items, LibraryView{
			Id:              v.ID,
			Name:            v.Name,
			CollectionType:  optional(v.CollectionType),
			PrimaryImageUrl: optional(v.PrimaryImageURL),
			LibraryUrl:      v.LibraryURL,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// LoginBackground streams a random backdrop and redirects to the fallback image when
// the media server has none to give.
func (s *Server) LoginBackground(w http.ResponseWriter, r *http.Request) {
	img, err := s.d.Browse.LoginBackground(r.Context())
	if err != nil {
		logging.With(r.Context(), s.log).Debug().Err(err).Msg("login background unavailable")
		if s.s.BackgroundFallbackURL == "" {
			s.fail(w, r, err)
			return
		}
		http.Redirect(w, r, s.s.BackgroundFallbackURL, http.StatusFound)
		return
	}
	defer img.Body.Close()
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, img.Body); err != nil {
		logging.With(r.Context(), s.log).Debug().Err(err).Msg("login background stream interrupted")
	}
}

// ===== media webhook =====

func (s *Server) EmbyWebhook(w http.ResponseWriter, r *http.Request, params EmbyWebhookParams) {
	if s.s.WebhookToken != "" {
		got := deref(params.Token)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.s.WebhookToken)) != 1 {
			s.writeError(w, r, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
	}
	var ev usecase.LibraryEvent
	if err := decode(r, &ev); err != nil {
		s.fail(w, r, err)
		return
	}
	item, created, err := s.d.Media.HandleLibraryEvent(r.Context(), ev)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	msg := "webhook.created"
	switch {
	case !created && item == nil:
		msg = "webhook.ignored"
	case !created:
		msg = "webhook.exists"
	}
	writeJSON(w, http.StatusOK, Message{Success: true, Message: s.tr(r).T(msg)})
}

func (s *Server) LatestMedia(w http.ResponseWriter, r *http.Request, params LatestMediaParams) {
	items, err := s.d.Media.Latest(r.Context(), deref(params.Limit))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := MediaList{Items: make([]MediaItem, 0, len(items))}
	for _, m := range items {
		out.Items = append(out.Items, mediaView(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// ===== admin =====

// CheckExpired runs the expiry sweep inline and reports it like a scheduled run.
func (s *Server) CheckExpired(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rep, err := s.d.Reconcile.SweepExpired(r.Context())
	metrics.ObserveJobRun(sched.JobExpirySweep, scheduler.TriggerManual, time.Since(start), err == nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	logging.With(r.Context(), s.log).Info().
		Int("scanned", rep.Scanned).
		Int("succeeded", rep.Succeeded).
		Int("failed", rep.Failed).
		Int("remote_failed", rep.RemoteFailed).
		Msg("manual expiry sweep finished")
	writeJSON(w, http.StatusOK, SweepReport{
		Success:      true,
		Message:      s.tr(r).T("sweep.done"),
		Scanned:      rep.Scanned,
		Succeeded:    rep.Succeeded,
		Failed:       rep.Failed,
		RemoteFailed: rep.RemoteFailed,
	})
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
