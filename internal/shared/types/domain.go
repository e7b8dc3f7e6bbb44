package types

// Domain describes one option manager (wifi icons, fonts, ...)
type Domain struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Categories  []Category `json:"categories"`
}

// DomainStatus is a domain definition plus its runtime state
type DomainStatus struct {
	Domain
	Available bool    `json:"available"`
	State     string  `json:"state"`
	ActiveID  *string `json:"active_id,omitempty"`
}
