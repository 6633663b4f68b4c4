package model

type EntryState string

const (
	EntryStateNotLoaded EntryState = "not_loaded"
	EntryStateLoaded    EntryState = "loaded"
	EntryStateNotReady  EntryState = "not_ready"
)

type EntryData struct {
	URL       string    `json:"url"`
	ColorMode ColorMode `json:"color_mode,omitempty"`
}

// Entry is one configured hub.
type Entry struct {
	EntryID  string     `json:"entry_id"`
	UniqueID string     `json:"unique_id"` // hub serial number
	Title    string     `json:"title"`
	Data     EntryData  `json:"data"`
	State    EntryState `json:"-"`
}

type Config struct {
	Entries []*Entry `json:"entries"` // Ordered slice
}

// UserInput is what the user submits to the config flow.
type UserInput struct {
	URL       string    `json:"url"`
	ColorMode ColorMode `json:"color_mode,omitempty"`
}

type FlowResultType string

const (
	FlowResultForm        FlowResultType = "form"
	FlowResultCreateEntry FlowResultType = "create_entry"
	FlowResultAbort       FlowResultType = "abort"
)

type FlowResult struct {
	Type   FlowResultType    `json:"type"`
	StepID string            `json:"step_id,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
	Reason string            `json:"reason,omitempty"`
	Entry  *Entry            `json:"entry,omitempty"`
}

type Diagnostics struct {
	EntryData map[string]interface{} `json:"entry_data"`
	Leds      []ModuleID             `json:"leds"`
	Disp      []ModuleID             `json:"disp"`
}
