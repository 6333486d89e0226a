package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"warden/internal/automod"
)

// classifyRESTError maps discordgo REST failures onto the automod sentinel
// errors so coordinators never see Discord error codes.
func classifyRESTError(err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return err
	}

	switch restErr.Message.Code {
	case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel:
		return fmt.Errorf("%w: %s", automod.ErrUnknownMessage, restErr.Message.Message)
	case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
		return fmt.Errorf("%w: %s", automod.ErrMissingPermissions, restErr.Message.Message)
	default:
		return err
	}
}
