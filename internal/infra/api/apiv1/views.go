package apiv1

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/usecase"
)

func (s *Server) userView(a *model.Account, imageTag string) User {
	u := User{
		Id:         a.ID,
		Username:   a.Username,
		Role:       UserRole(a.Role),
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
		ExpiryDate: a.ExpiryDate,
	}
	if a.ExternalID != "" {
		ext := a.ExternalID
		u.ExternalId = &ext
	}
	if a.RemoteState != "" {
		st := string(a.RemoteState)
		u.RemoteState = &st
	}
	if imageTag != "" && a.ExternalID != "" && s.s.PublicURL != "" {
		avatar := fmt.Sprintf("%s/Items/%s/Images/Primary?tag=%s",
			strings.TrimRight(s.s.PublicURL, "/"), url.PathEscape(a.ExternalID), url.QueryEscape(imageTag))
		u.AvatarUrl = &avatar
	}
	return u
}

func cdkView(c *model.CDK) CDK {
	return CDK{
		Id:              c.ID,
		Code:            c.Code,
		Status:          CDKStatus(c.Status),
		BatchId:         c.BatchID,
		CreatedAt:       c.CreatedAt,
		ExpiresAt:       c.RedeemBy(),
		CdkValidDays:    c.CDKValidDays,
		MemberValidDays: c.MemberValidDays,
		TemplateId:      c.TemplateID,
		TemplateName:    c.TemplateName,
		CreatedBy:       c.CreatedBy,
		UsedById:        c.UsedByAccountID,
		UsedByUsername:  c.UsedByUsername,
		UsedAt:          c.UsedAt,
	}
}

func templateView(t *model.Template) Template {
	return Template{
		Id:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		ValidDays:     t.ValidDays,
		Policy:        toMap(t.Policy),
		Configuration: toMap(t.Configuration),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func mediaView(m *model.MediaItem) MediaItem {
	return MediaItem{
		Id:             m.ID,
		EmbyId:         m.EmbyID,
		Name:           m.Name,
		Overview:       m.Overview,
		Type:           m.Type,
		ProductionYear: m.ProductionYear,
		DateCreated:    m.DateCreated,
		BackdropUrl:    m.BackdropURL,
		PosterUrl:      m.PosterURL,
		WebUrl:         m.WebURL,
	}
}

func browseItemView(it usecase.BrowseItem) BrowseItem {
	out := BrowseItem{
		Id:              it.ID,
		Name:            it.Name,
		Type:            it.Type,
		Overview:        optional(it.Overview),
		PosterUrl:       optional(it.PosterURL),
		BackdropUrl:     optional(it.BackdropURL),
		PrimaryImageUrl: optional(it.PrimaryImageURL),
		WebUrl:          optional(it.WebURL),
	}
	if it.ProductionYear > 0 {
		y := it.ProductionYear
		out.ProductionYear = &y
	}
	return out
}

func libraryView(l model.Library) Library {
	out := Library{Id: l.ID, Name: l.Name, CollectionType: optional(l.CollectionType)}
	if len(l.Locations) > 0 {
		locs := l.Locations
		out.Locations = &locs
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func configView(c *model.SystemConfig) SystemConfig {
	return SystemConfig{Key: c.Key, Value: c.Value, Description: c.Description, UpdatedAt: c.UpdatedAt}
}

// templateInput overlays the request documents on base (the stored template on update,
// the defaults on create), so omitted policy fields keep their current values.
func templateInput(in TemplateInput, base *model.Template) (usecase.TemplateInput, error) {
	out := usecase.TemplateInput{Name: in.Name, Description: in.Description, ValidDays: in.ValidDays}
	if in.Policy != nil {
		p := model.DefaultPolicy()
		if base != nil {
			p = base.Policy
		}
		if err := overlay(*in.Policy, &p); err != nil {
			return out, fmt.Errorf("%w: policy: %v", domain.ErrInvalidArgument, err)
		}
		out.Policy = &p
	}
	if in.Configuration != nil {
		c := model.DefaultConfiguration()
		if base != nil {
			c = base.Configuration
		}
		if err := overlay(*in.Configuration, &c); err != nil {
			return out, fmt.Errorf("%w: configuration: %v", domain.ErrInvalidArgument, err)
		}
		out.Configuration = &c
	}
	return out, nil
}

func overlay(src map[string]interface{}, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func toMap(v any) map[string]interface{} {
	out := map[string]interface{}{}
	b, err := json.Marshal(v)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(b, &out)
	return out
}
