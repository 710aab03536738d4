// Package agui maps run events onto the AG-UI protocol so that workflow
// runs can be streamed to AG-UI compatible frontends over SSE.
//
//	mapper := agui.NewMapper(threadID, runID)
//	for ev := range mapper.MapStream(registry.RunStream(ctx, name, input)) {
//	    if err := agui.WriteSSE(w, flusher, ev); err != nil {
//	        return
//	    }
//	}
package agui
