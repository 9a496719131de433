package physics

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/integrators"
)

func newUnitRun() *run {
	return &run{
		sp:     Sphere{Radius: 1, Gravity: StandardGravity},
		tun:    DefaultTuning(),
		mass:   1,
		integ:  integrators.NewSymplecticEuler(),
		logger: slog.New(slog.DiscardHandler),
	}
}

func expectVec(got, want mgl64.Vec3) {
	GinkgoHelper()
	for i := 0; i < 3; i++ {
		Expect(got[i]).To(BeNumerically("~", want[i], 1e-9), "component %d of %v", i, got)
	}
}

var _ = Describe("contact state machine", func() {
	var r *run

	BeforeEach(func() {
		r = newUnitRun()
	})

	Describe("initialize", func() {
		It("starts interior points in free flight", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{0, -0.5, 0}, Velocity: mgl64.Vec3{0, -1, 0}}
			r.initialize(&st)
			Expect(st.Phase).To(Equal(dynamo.FreeFlight))
			expectVec(st.Position, mgl64.Vec3{0, -0.5, 0})
		})

		It("starts surface points in contact", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{0, -1, 0}}
			r.initialize(&st)
			Expect(st.Phase).To(Equal(dynamo.Contact))
		})
	})

	Describe("preemptive detachment", func() {
		It("releases a fast point at the equator", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{1, 0, 0}, Velocity: mgl64.Vec3{0, 0, 1}, Phase: dynamo.Contact}
			Expect(r.preemptiveDetach(&st)).To(Equal(CauseCentrifugal))
			Expect(st.Phase).To(Equal(dynamo.FreeFlight))
		})

		It("keeps a resting point at the south pole", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{0, -1, 0}, Phase: dynamo.Contact}
			Expect(r.preemptiveDetach(&st)).To(BeEmpty())
			Expect(st.Phase).To(Equal(dynamo.Contact))
		})

		It("requires the margin over the gravity share", func() {
			// m v^2 / R equals m g exactly at the pole: below the 1.05 margin
			st := dynamo.ParticleState{
				Position: mgl64.Vec3{0, -1, 0},
				Velocity: mgl64.Vec3{math.Sqrt(StandardGravity), 0, 0},
				Phase:    dynamo.Contact,
			}
			Expect(r.preemptiveDetach(&st)).To(BeEmpty())
		})

		It("ignores points already in flight", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{1, 0, 0}, Velocity: mgl64.Vec3{0, 0, 10}, Phase: dynamo.FreeFlight}
			Expect(r.preemptiveDetach(&st)).To(BeEmpty())
			Expect(st.Phase).To(Equal(dynamo.FreeFlight))
		})
	})

	Describe("re-projection", func() {
		It("snaps a point beyond the surface and strips radial velocity", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{0, -1.2, 0}, Velocity: mgl64.Vec3{0.5, -3, 0}}
			Expect(r.reproject(&st)).To(BeTrue())
			expectVec(st.Position, mgl64.Vec3{0, -1, 0})
			expectVec(st.Velocity, mgl64.Vec3{0.5, 0, 0})
		})

		It("leaves interior points alone", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{0.2, -0.3, 0}, Velocity: mgl64.Vec3{0, -3, 0}}
			Expect(r.reproject(&st)).To(BeFalse())
			expectVec(st.Velocity, mgl64.Vec3{0, -3, 0})
		})

		It("leaves the origin alone", func() {
			st := dynamo.ParticleState{Velocity: mgl64.Vec3{1, 0, 0}}
			Expect(r.reproject(&st)).To(BeFalse())
		})
	})

	Describe("free flight reconciliation", func() {
		It("stays in flight away from the wall", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{0, -0.9, 0}, Velocity: mgl64.Vec3{0, -1, 0}, Phase: dynamo.FreeFlight}
			Expect(r.reconcile(&st)).To(BeEmpty())
			Expect(st.Phase).To(Equal(dynamo.FreeFlight))
		})

		It("lands and reflects the inbound normal velocity", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{0, -1, 0}, Velocity: mgl64.Vec3{0, 2, 0}, Phase: dynamo.FreeFlight}
			Expect(r.reconcile(&st)).To(Equal(CauseLanded))
			Expect(st.Phase).To(Equal(dynamo.Contact))
			// restitution 0.3 of the 2 m/s inbound speed, pointing back inward
			expectVec(st.Velocity, mgl64.Vec3{0, -0.6, 0})
		})

		It("lands without a bounce when moving outward", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{1, 0, 0}, Velocity: mgl64.Vec3{0, 0, 1}, Phase: dynamo.FreeFlight}
			Expect(r.reconcile(&st)).To(Equal(CauseLanded))
			expectVec(st.Velocity, mgl64.Vec3{0, 0, 1})
		})
	})

	Describe("contact reconciliation", func() {
		It("projects a penetrating point back and bounces it", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{0, -0.5, 0}, Velocity: mgl64.Vec3{0, 1, 0}, Phase: dynamo.Contact}
			Expect(r.reconcile(&st)).To(BeEmpty())
			Expect(st.Phase).To(Equal(dynamo.Contact))
			expectVec(st.Position, mgl64.Vec3{0, -1, 0})
			expectVec(st.Velocity, mgl64.Vec3{0, -0.3, 0})
		})

		It("holds a supported point and removes outward drift", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{0, -1.000001, 0}, Velocity: mgl64.Vec3{0.5, -0.2, 0}, Phase: dynamo.Contact}
			Expect(r.reconcile(&st)).To(BeEmpty())
			Expect(st.Phase).To(Equal(dynamo.Contact))
			expectVec(st.Position, mgl64.Vec3{0, -1, 0})
			expectVec(st.Velocity, mgl64.Vec3{0.5, 0, 0})
		})

		It("releases a slow point at the top of the sphere", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{0, 1, 0}, Velocity: mgl64.Vec3{1, 0, 0}, Phase: dynamo.Contact}
			Expect(r.reconcile(&st)).To(Equal(CauseNormalForce))
			Expect(st.Phase).To(Equal(dynamo.FreeFlight))
			expectVec(st.Position, mgl64.Vec3{0, 1, 0})
			expectVec(st.Velocity, mgl64.Vec3{1, 0, 0})
		})

		It("keeps a point that is still moving inward", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{0, 1, 0}, Velocity: mgl64.Vec3{0, -0.5, 0}, Phase: dynamo.Contact}
			Expect(r.reconcile(&st)).To(BeEmpty())
			Expect(st.Phase).To(Equal(dynamo.Contact))
		})
	})

	Describe("step", func() {
		It("records transitions with the index of the resulting sample", func() {
			st := dynamo.ParticleState{Position: mgl64.Vec3{1, 0, 0}, Velocity: mgl64.Vec3{0, 0, 1}, Phase: dynamo.Contact}
			r.step(&st, 4)
			Expect(r.events).NotTo(BeEmpty())
			Expect(r.events[0].Step).To(Equal(5))
			Expect(r.events[0].Time).To(BeNumerically("~", 5*r.tun.Dt, 1e-12))
			Expect(r.events[0].From).To(Equal(dynamo.Contact))
			Expect(r.events[0].Cause).To(Equal(CauseCentrifugal))
			Expect(st.Phase).To(Equal(dynamo.Contact))
		})
	})
})
