// Package prompt collects export parameters interactively.
//
// Dialog walks through the layer, target CRS, attribute field and default Z
// prompts, pre-filling each from the last saved session, and then serves as
// the export.PathPrompter for the save location. Prompts go through a Driver;
// NewSurveyDriver is the terminal implementation and Ctrl-C surfaces as
// export.ErrCancelled.
package prompt
