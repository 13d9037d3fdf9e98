package orchestrator

import "github.com/Adda-Baaj/vidsum/internal/domain"

// Project derives the view model of state. It never mutates state and the
// returned Result is a fresh copy.
func Project(state domain.SubmissionState) domain.ViewModel {
	vm := domain.ViewModel{IsLoading: state.Phase == domain.PhasePending}
	if state.Phase == domain.PhaseResolved && state.Result != nil {
		res := *state.Result
		vm.Result = &res
	}
	return vm
}

// clone copies the pointer fields so callers cannot reach the live state.
func clone(state domain.SubmissionState) domain.SubmissionState {
	if state.Result != nil {
		res := *state.Result
		state.Result = &res
	}
	if state.Error != nil {
		n := *state.Error
		state.Error = &n
	}
	return state
}
