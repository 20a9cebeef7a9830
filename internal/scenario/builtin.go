package scenario

import "spoofdefense-sim/internal/engine"

// BuiltIn returns the stock threat profiles with their briefings.
func BuiltIn() Catalogue {
	return Catalogue{
		"bluetooth": {
			ID:            "bluetooth",
			Name:          "Bluetooth Drone",
			Description:   "Short-range, fast, and low-flying threat.",
			Range:         "< 100m",
			Speed:         0.8,
			Altitude:      50,
			DefenseMethod: "Signal Overpowering",
			BestUseCase:   "Close-range denial of consumer drones in crowded areas.",
			Phases: []Phase{
				{Name: engine.StageIngress, Description: "Status: Ingress. A high-speed, low-altitude drone has been detected on a direct course for the protected zone."},
				{Name: engine.StageDetected, Description: "Status: Threat Detected! The drone is in critical range. Activate the GPS spoofer now."},
				{Name: engine.StageDefenseActive, Description: "Status: Defense Active. Counterfeit GPS signal is broadcasting, diverting the drone towards the Safe Zone. Path correction is in progress."},
				{Name: engine.StageNeutralized, Description: "Status: Threat Neutralized. The drone has been successfully diverted into the designated safe area."},
			},
		},
		"wifi": {
			ID:            "wifi",
			Name:          "WiFi Drone",
			Description:   "Medium-range commercial drone.",
			Range:         "100-500m",
			Speed:         0.6,
			Altitude:      100,
			DefenseMethod: "Coordinate Shifting",
			BestUseCase:   "Subtly diverting commercial drones from sensitive locations.",
			Phases: []Phase{
				{Name: engine.StageIngress, Description: "Status: Ingress. A commercial-grade WiFi drone is approaching. Monitor its trajectory."},
				{Name: engine.StageDetected, Description: "Status: Threat Detected! The drone has breached the outer perimeter. Prepare to engage countermeasures."},
				{Name: engine.StageDefenseActive, Description: "Status: Defense Active. The spoofer is active, shifting the drone's perceived position. Its actual trajectory is now curving toward the Safe Zone."},
				{Name: engine.StageNeutralized, Description: "Status: Threat Neutralized. The drone's navigation has been successfully compromised, leading it into the safe zone."},
			},
		},
		"satellite": {
			ID:            "satellite",
			Name:          "Satellite GPS Drone",
			Description:   "Long-range surveillance drone.",
			Range:         "Global",
			Speed:         0.4,
			Altitude:      200,
			DefenseMethod: "Signal Hijacking",
			BestUseCase:   "Taking control of high-value assets relying on public GPS.",
			Phases: []Phase{
				{Name: engine.StageIngress, Description: "Status: Ingress. A long-range surveillance drone is on approach. Awaiting optimal engagement window."},
				{Name: engine.StageDetected, Description: "Status: Threat Detected! The drone is entering the effective range of our ground-based spoofer. It is now vulnerable."},
				{Name: engine.StageDefenseActive, Description: "Status: Defense Active. Broadcasting a powerful, localized GPS signal to overpower the satellite link. Its flight path is being altered."},
				{Name: engine.StageNeutralized, Description: "Status: Threat Neutralized. The drone has been successfully steered into the safe diversion zone."},
			},
		},
		"geofence": {
			ID:            "geofence",
			Name:          "Geo-Fenced Drone",
			Description:   "Programmed to avoid specific zones.",
			Range:         "Configurable",
			Speed:         0.7,
			Altitude:      75,
			DefenseMethod: "Virtual Boundary Manipulation",
			BestUseCase:   "Tricking automated drones into violating their own no-fly zones.",
			Phases: []Phase{
				{Name: engine.StageIngress, Description: "Status: Ingress. An automated drone with geo-fencing is approaching. We will override its instructions."},
				{Name: engine.StageDetected, Description: "Status: Threat Detected! The drone is nearing its programmed boundary. Ideal moment to engage."},
				{Name: engine.StageDefenseActive, Description: "Status: Defense Active. Our spoofing signal is creating a 'virtual' location for the drone, tricking its system into believing it is on a safe course while we guide it."},
				{Name: engine.StageNeutralized, Description: "Status: Threat Neutralized. The drone's geo-fencing has been bypassed by manipulating its perceived position."},
			},
		},
	}
}
