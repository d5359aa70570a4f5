package enums

// ConnectionStatus reflects the last known health of a network credential.
type ConnectionStatus string

const (
	ConnectionStatusConnected ConnectionStatus = "connected"
	ConnectionStatusError     ConnectionStatus = "error"
	ConnectionStatusDisabled  ConnectionStatus = "disabled"
)

var validConnectionStatuses = []ConnectionStatus{
	ConnectionStatusConnected,
	ConnectionStatusError,
	ConnectionStatusDisabled,
}

func (s ConnectionStatus) String() string {
	return string(s)
}

func (s ConnectionStatus) IsValid() bool {
	for _, candidate := range validConnectionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}
