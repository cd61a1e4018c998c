package tiesr

import (
	"context"
	"errors"

	"github.com/proegssilb/tiesr-dialer-sub000/adaptstate"
	"github.com/proegssilb/tiesr-dialer-sub000/compensate"
)

// Snapshot returns the adaptation state that persists across sessions.
func (s *Session) Snapshot() *adaptstate.State {
	st := adaptstate.Default(s.dims.NMFCC, s.dims.NFilter)
	copy(st.LogH, s.sched.LogH)
	copy(st.ChannelNum, s.channel.Num)
	copy(st.ChannelDen, s.channel.Den)
	copy(st.LogVarRho, s.sched.SVA().LogVarRho)
	st.MeanEn = s.energy.MeanEn()
	st.PrevMeanEn = s.energy.PrevMeanEn()
	cur := s.sched.Cursor()
	st.CursorIndex = cur.Index()
	st.Cycles = cur.Cycles()
	return st
}

// Restore installs st. The cursor restarts at the first mean: the model of
// a new session still holds clean means, so a full pass is needed before
// it counts as adapted again.
func (s *Session) Restore(st *adaptstate.State) error {
	if err := st.Check(s.dims.NMFCC, s.dims.NFilter); err != nil {
		return err
	}
	copy(s.sched.LogH, st.LogH)
	copy(s.channel.Num, st.ChannelNum)
	copy(s.channel.Den, st.ChannelDen)
	copy(s.sched.SVA().LogVarRho, st.LogVarRho)
	s.energy.SetMeanEn(st.MeanEn, st.PrevMeanEn)
	s.sched.Cursor().Set(0, 0)
	return nil
}

// LoadState reads the state stored under key. A missing or unusable state
// is not an error: the session falls back to zero bias and reports
// StatusReset. Only a cancelled context returns an error.
func (s *Session) LoadState(ctx context.Context, store adaptstate.Store, key string) (compensate.Status, error) {
	st, err := adaptstate.Load(ctx, store, key)
	if err == nil {
		err = s.Restore(st)
	}
	if err == nil {
		return compensate.StatusSuccess, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return compensate.StatusLoadFail, &compensate.StatusError{Status: compensate.StatusLoadFail, Err: ctxErr}
	}

	reason := "error"
	switch {
	case errors.Is(err, adaptstate.ErrNotFound):
		reason = "not_found"
		s.logger.Debug("no adaptation state stored, using defaults", "key", key)
	case errors.Is(err, adaptstate.ErrCorrupt):
		reason = "corrupt"
		s.logger.Warn("adaptation state unusable, resetting", "key", key, "err", err)
	default:
		s.logger.Warn("adaptation state load failed, resetting", "key", key, "err", err)
	}
	s.ClearState()
	s.metrics.RecordStateReset(ctx, reason)
	return compensate.StatusReset, nil
}

// SaveState writes the current state under key.
func (s *Session) SaveState(ctx context.Context, store adaptstate.Store, key string) error {
	if err := adaptstate.Save(ctx, store, key, s.Snapshot()); err != nil {
		return &compensate.StatusError{Status: compensate.StatusSaveFail, Err: err}
	}
	return nil
}

// ClearState returns the channel, variance multipliers, noise level and
// cursor to their defaults. The model means are recompensated as the
// cursor passes over them.
func (s *Session) ClearState() {
	clear(s.sched.LogH)
	s.channel.Reset()
	s.sched.SVA().Clear()
	s.energy.SetMeanEn(0, 0)
	s.sched.Cursor().Set(0, 0)
}
