package enums

import "fmt"

// NetworkType distinguishes traffic sources from offer networks.
type NetworkType string

const (
	NetworkTypeAd  NetworkType = "ad_network"
	NetworkTypeCPA NetworkType = "cpa_network"
)

var validNetworkTypes = []NetworkType{
	NetworkTypeAd,
	NetworkTypeCPA,
}

func (n NetworkType) String() string {
	return string(n)
}

func (n NetworkType) IsValid() bool {
	for _, candidate := range validNetworkTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNetworkType converts a raw string into a NetworkType.
func ParseNetworkType(value string) (NetworkType, error) {
	for _, candidate := range validNetworkTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid network type %q", value)
}
