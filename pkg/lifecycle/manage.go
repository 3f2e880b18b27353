package lifecycle

import (
	"context"
	"sort"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/sessions"
)

// Attach hands the terminal to the session. It requires a live session.
func (c *Controller) Attach(ctx context.Context, name string) error {
	st, err := c.observe(ctx, name)
	if err != nil {
		return err
	}

	if !st.live {
		if st.hasRecord || st.recordErr != nil {
			return errors.StaleMetadata(name, "a record exists but its tmux session is not running; run 'remux stop "+name+"' to clean up or 'remux init "+name+"' to recreate it")
		}
		return errors.SessionNotFound(name)
	}
	if !st.hasRecord {
		c.logger.WithField("session", name).Warn("Attaching to a session without a record")
	}

	return c.orch.Attach(ctx, name)
}

// ConfirmFunc approves a destructive operation on name.
type ConfirmFunc func(name string) bool

// StopResult describes what Stop found and removed.
type StopResult struct {
	Name      string `json:"name"`
	HadRecord bool   `json:"hadRecord"`
	WasLive   bool   `json:"wasLive"`
}

// Stop kills the tmux session and then deletes the record, even when the
// kill failed. A kill failure is returned after the record is gone.
func (c *Controller) Stop(ctx context.Context, name string, confirm ConfirmFunc) (StopResult, error) {
	st, err := c.observe(ctx, name)
	if err != nil {
		return StopResult{}, err
	}
	result := StopResult{Name: name, HadRecord: st.hasRecord || st.recordErr != nil, WasLive: st.live}

	if !result.HadRecord && !st.live {
		return result, errors.SessionNotFound(name)
	}
	if confirm == nil || !confirm(name) {
		return result, errors.Aborted("stop")
	}

	log := c.logger.WithField("session", name)

	killErr := c.orch.KillSession(ctx, name)
	if killErr != nil {
		log.WithError(killErr).Warn("Failed to kill tmux session; removing record anyway")
	}

	if err := c.store.Delete(name); err != nil {
		return result, err
	}
	log.Info("Session stopped")

	if killErr != nil {
		if remuxErr, ok := errors.As(killErr); ok {
			return result, remuxErr.WithDetail("recordDeleted", true)
		}
		return result, errors.Wrap(killErr, errors.ErrCodeCommandFailed, "failed to kill tmux session").
			WithDetail("session", name).
			WithDetail("recordDeleted", true)
	}
	return result, nil
}

// List returns the stored records sorted by name. Records are not checked
// against live tmux sessions.
func (c *Controller) List(ctx context.Context) ([]sessions.Record, []sessions.SkippedEntry, error) {
	records, skipped, err := c.store.List()
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, skipped, nil
}

// Rename moves a session to newName. The tmux session is renamed first and
// the record is written under the new name before the old file is removed.
// Failures undo the earlier steps so one session never has two records.
func (c *Controller) Rename(ctx context.Context, oldName, newName string) (sessions.Record, error) {
	if oldName == newName {
		return sessions.Record{}, errors.InvalidInput("old and new session names are the same")
	}

	st, err := c.observe(ctx, oldName)
	if err != nil {
		return sessions.Record{}, err
	}
	if st.recordErr != nil {
		return sessions.Record{}, st.recordErr
	}
	if !st.hasRecord {
		if st.live {
			return sessions.Record{}, errors.RecordNotFound(oldName).
				WithDetail("hint", "the tmux session has no record; stop it and run init again")
		}
		return sessions.Record{}, errors.SessionNotFound(oldName)
	}

	if err := c.resolver.CheckFree(ctx, newName); err != nil {
		return sessions.Record{}, err
	}

	log := c.logger.WithField("session", oldName).WithField("new_name", newName)

	if st.live {
		if err := c.orch.RenameSession(ctx, oldName, newName); err != nil {
			return sessions.Record{}, err
		}
	}

	revertTmux := func() {
		if !st.live {
			return
		}
		if err := c.orch.RenameSession(ctx, newName, oldName); err != nil {
			log.WithError(err).Error("Failed to revert tmux rename")
		}
	}

	rec := st.record
	rec.Name = newName
	rec.UpdatedAt = c.timestamp()
	if err := c.store.Write(rec); err != nil {
		revertTmux()
		return sessions.Record{}, err
	}

	if err := c.store.Delete(oldName); err != nil {
		if delErr := c.store.Delete(newName); delErr != nil {
			log.WithError(delErr).Error("Failed to remove new record after rename failure")
		}
		revertTmux()
		return sessions.Record{}, err
	}

	log.Info("Session renamed")
	return rec, nil
}
