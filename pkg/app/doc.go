// Package app runs an application in the model-update-view style.
//
// An application is three functions: init produces the first model, update
// folds a message into the model and may issue Orders, and view renders the
// model as a vdom tree. The runtime owns one goroutine per application. All
// update, view and reconcile work happens there, so neither the model nor
// the live document needs locking.
//
// Messages come from live-tree listeners, finished commands, Orders.SendMsg
// and App.Update. Each one gets its own update invocation. Follow-up
// messages issued with SendMsg are drained from a work queue in the order
// they were issued, never by calling update recursively.
//
// Renders are coalesced to animation frames: however many updates run
// between two frame boundaries, view and the reconciler run at most once.
//
//	a, err := app.Build(initCounter, updateCounter, viewCounter).
//	    Mount(doc, doc.Body()).
//	    Frames(frame.FPS(60)).
//	    Finish()
//	if err != nil {
//	    return err
//	}
//	if err := a.Run(ctx); err != nil {
//	    return err
//	}
//	defer a.Close()
package app
