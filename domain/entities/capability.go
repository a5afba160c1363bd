package entities

import "strings"

// Capability is a bitmask of Discord permissions the bot cares about.
// Validation works on these domain-level bits; the infrastructure layer maps
// them to the Discord API's permission integers.
type Capability uint64

const (
	CapabilitySendMessages Capability = 1 << iota
	CapabilityManageMessages
	CapabilityManageChannels
	CapabilityManageRoles
	CapabilityManageGuild
	CapabilityAddReactions
	CapabilityEmbedLinks
	CapabilityAdministrator
)

// RequiredChannelCapabilities must all be granted to the bot in both the
// registration and slotlist channels.
const RequiredChannelCapabilities = CapabilitySendMessages |
	CapabilityManageMessages |
	CapabilityManageChannels |
	CapabilityAddReactions |
	CapabilityEmbedLinks

// ForbiddenRoleCapabilities are moderation bits the scrim success role must
// not carry.
const ForbiddenRoleCapabilities = CapabilityManageChannels |
	CapabilityManageGuild |
	CapabilityManageMessages |
	CapabilityManageRoles |
	CapabilityAdministrator

// RequiredGuildCapabilities the bot needs at guild scope to manage scrims.
const RequiredGuildCapabilities = CapabilityManageChannels | CapabilityManageRoles

var capabilityNames = map[Capability]string{
	CapabilitySendMessages:   "send_messages",
	CapabilityManageMessages: "manage_messages",
	CapabilityManageChannels: "manage_channels",
	CapabilityManageRoles:    "manage_roles",
	CapabilityManageGuild:    "manage_guild",
	CapabilityAddReactions:   "add_reactions",
	CapabilityEmbedLinks:     "embed_links",
	CapabilityAdministrator:  "administrator",
}

// Has reports whether every bit of want is present.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// Missing returns the bits of want that are absent from c.
func (c Capability) Missing(want Capability) Capability {
	return want &^ c
}

// Intersect returns the bits present in both sets.
func (c Capability) Intersect(other Capability) Capability {
	return c & other
}

// String lists the set bits as comma-separated permission names.
func (c Capability) String() string {
	var names []string
	for bit := CapabilitySendMessages; bit <= CapabilityAdministrator; bit <<= 1 {
		if c&bit != 0 {
			names = append(names, capabilityNames[bit])
		}
	}
	return strings.Join(names, ", ")
}
