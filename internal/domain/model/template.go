package model

import (
	"fmt"
	"strings"
	"time"

	"emby-cdk-manager/internal/domain"

	"github.com/google/uuid"
)

const DefaultAuthProviderID = "Emby.Server.Implementations.Library.DefaultAuthenticationProvider"

// Policy is the remote account policy document applied on provisioning.
// Field names follow the media server's wire format.
type Policy struct {
	IsAdministrator                 bool     `json:"IsAdministrator"`
	IsHidden                        bool     `json:"IsHidden"`
	IsDisabled                      bool     `json:"IsDisabled"`
	EnableAllFolders                bool     `json:"EnableAllFolders"`
	EnabledFolders                  []string `json:"EnabledFolders"`
	EnableAllDevices                bool     `json:"EnableAllDevices"`
	EnabledDevices                  []string `json:"EnabledDevices"`
	EnableAllChannels               bool     `json:"EnableAllChannels"`
	EnabledChannels                 []string `json:"EnabledChannels"`
	EnableRemoteControlOfOtherUsers bool     `json:"EnableRemoteControlOfOtherUsers"`
	EnableSharedDeviceControl       bool     `json:"EnableSharedDeviceControl"`
	EnableRemoteAccess              bool     `json:"EnableRemoteAccess"`
	EnableLiveTvManagement          bool     `json:"EnableLiveTvManagement"`
	EnableLiveTvAccess              bool     `json:"EnableLiveTvAccess"`
	EnableMediaPlayback             bool     `json:"EnableMediaPlayback"`
	EnableAudioPlaybackTranscoding  bool     `json:"EnableAudioPlaybackTranscoding"`
	EnableVideoPlaybackTranscoding  bool     `json:"EnableVideoPlaybackTranscoding"`
	EnablePlaybackRemuxing          bool     `json:"EnablePlaybackRemuxing"`
	EnableContentDeletion           bool     `json:"EnableContentDeletion"`
	EnableContentDownloading        bool     `json:"EnableContentDownloading"`
	EnableSyncTranscoding           bool     `json:"EnableSyncTranscoding"`
	EnableMediaConversion           bool     `json:"EnableMediaConversion"`
	InvalidLoginAttemptCount        int      `json:"InvalidLoginAttemptCount"`
	EnablePublicSharing             bool     `json:"EnablePublicSharing"`
	BlockedTags                     []string `json:"BlockedTags"`
	BlockedMediaFolders             []string `json:"BlockedMediaFolders"`
	BlockedChannels                 []string `json:"BlockedChannels"`
	RemoteClientBitrateLimit        int      `json:"RemoteClientBitrateLimit"`
	AuthenticationProviderID        string   `json:"AuthenticationProviderId"`
	ExcludedSubFolders              []string `json:"ExcludedSubFolders"`
	DisablePremiumFeatures          bool     `json:"DisablePremiumFeatures"`
	SimultaneousStreamLimit         int      `json:"SimultaneousStreamLimit"`
}

// Configuration is the remote per-user display/playback preferences document.
type Configuration struct {
	AudioLanguagePreference    string   `json:"AudioLanguagePreference"`
	PlayDefaultAudioTrack      bool     `json:"PlayDefaultAudioTrack"`
	SubtitleLanguagePreference string   `json:"SubtitleLanguagePreference"`
	DisplayMissingEpisodes     bool     `json:"DisplayMissingEpisodes"`
	SubtitleMode               string   `json:"SubtitleMode"`
	EnableLocalPassword        bool     `json:"EnableLocalPassword"`
	OrderedViews               []string `json:"OrderedViews"`
	LatestItemsExcludes        []string `json:"LatestItemsExcludes"`
	MyMediaExcludes            []string `json:"MyMediaExcludes"`
	HidePlayedInLatest         bool     `json:"HidePlayedInLatest"`
	RememberAudioSelections    bool     `json:"RememberAudioSelections"`
	RememberSubtitleSelections bool     `json:"RememberSubtitleSelections"`
	EnableNextEpisodeAutoPlay  bool     `json:"EnableNextEpisodeAutoPlay"`
}

func DefaultPolicy() Policy {
	return Policy{
		EnableAllFolders:               true,
		EnabledFolders:                 []string{},
		EnableAllDevices:               true,
		EnabledDevices:                 []string{},
		EnableAllChannels:              true,
		EnabledChannels:                []string{},
		EnableRemoteAccess:             true,
		EnableLiveTvAccess:             true,
		EnableMediaPlayback:            true,
		EnableAudioPlaybackTranscoding: true,
		EnableVideoPlaybackTranscoding: true,
		EnablePlaybackRemuxing:         true,
		BlockedTags:                    []string{},
		BlockedMediaFolders:            []string{},
		BlockedChannels:                []string{},
		AuthenticationProviderID:       DefaultAuthProviderID,
		ExcludedSubFolders:             []string{},
	}
}

func DefaultConfiguration() Configuration {
	return Configuration{
		AudioLanguagePreference:    "chi",
		PlayDefaultAudioTrack:      true,
		SubtitleLanguagePreference: "chi",
		SubtitleMode:               "Default",
		OrderedViews:               []string{},
		LatestItemsExcludes:        []string{},
		MyMediaExcludes:            []string{},
		HidePlayedInLatest:         true,
		RememberAudioSelections:    true,
		RememberSubtitleSelections: true,
		EnableNextEpisodeAutoPlay:  true,
	}
}

// Validate rejects presets the media server would refuse or that would grant admin rights.
func (p Policy) Validate() error {
	if p.IsAdministrator {
		return fmt.Errorf("%w: template policy may not grant administrator", domain.ErrInvalidArgument)
	}
	if p.SimultaneousStreamLimit < 0 || p.RemoteClientBitrateLimit < 0 || p.InvalidLoginAttemptCount < 0 {
		return fmt.Errorf("%w: policy limits must be >= 0", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(p.AuthenticationProviderID) == "" {
		return fmt.Errorf("%w: policy AuthenticationProviderId is required", domain.ErrInvalidArgument)
	}
	if !p.EnableAllFolders && len(p.EnabledFolders) == 0 {
		return fmt.Errorf("%w: policy grants no folders", domain.ErrInvalidArgument)
	}
	return nil
}

var subtitleModes = map[string]bool{
	"Default": true, "Always": true, "OnlyForced": true, "None": true, "Smart": true,
}

func (c Configuration) Validate() error {
	if !subtitleModes[c.SubtitleMode] {
		return fmt.Errorf("%w: unknown SubtitleMode %q", domain.ErrInvalidArgument, c.SubtitleMode)
	}
	return nil
}

// Template is a named provisioning preset.
type Template struct {
	ID            string
	Name          string
	Description   *string
	ValidDays     int
	Policy        Policy
	Configuration Configuration
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewTemplate validates and constructs a template; nil documents take the defaults.
func NewTemplate(name string, description *string, validDays int, policy *Policy, cfg *Configuration) (*Template, error) {
	name = strings.TrimSpace(name)
	if name == "" || validDays < 0 {
		return nil, domain.ErrInvalidArgument
	}
	t := &Template{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   description,
		ValidDays:     validDays,
		Policy:        DefaultPolicy(),
		Configuration: DefaultConfiguration(),
		CreatedAt:     time.Now(),
	}
	t.UpdatedAt = t.CreatedAt
	if policy != nil {
		t.Policy = *policy
	}
	if cfg != nil {
		t.Configuration = *cfg
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" || t.ValidDays < 0 {
		return domain.ErrInvalidArgument
	}
	if err := t.Policy.Validate(); err != nil {
		return err
	}
	return t.Configuration.Validate()
}
